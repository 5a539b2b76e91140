package main

import (
	"os"

	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_ = zap.L().Sync()
		os.Exit(1)
	}
	_ = zap.L().Sync()
}
