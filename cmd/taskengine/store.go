package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kubev2v/taskengine/internal/store"
	"github.com/kubev2v/taskengine/internal/store/migrations"
)

// openStore opens and migrates the database at path.
func openStore(ctx context.Context, path string) (*store.Store, error) {
	db, err := store.NewDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store.NewStore(db), nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		zap.S().Named("store").Errorw("failed to close store", "error", err)
	}
}
