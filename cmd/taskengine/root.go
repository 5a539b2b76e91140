package main

import (
	"fmt"

	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kubev2v/taskengine/internal/config"
)

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "taskengine",
		Short:         "Cooperative task engine: run resumable tasks on a worker pool",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: cobrautil.CommandStack(
			cobrautil.SyncViperPreRunE("taskengine"),
			initLogger,
		),
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "path of a YAML configuration file")
	config.RegisterFlags(cmd.PersistentFlags(), config.NewConfigurationWithDefaults())

	cmd.AddCommand(
		newRunCmd(opts),
		newReadCmd(opts),
		newHistoryCmd(opts),
		newTokenCmd(opts),
		newRemoteCmd(opts),
	)

	return cmd
}

// loadConfig layers the configuration file, environment and flags of cmd and validates the
// result.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	cfg, err := config.Load(o.configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func initLogger(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		return err
	}
	levelName, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return err
	}

	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", levelName, err)
	}

	var zc zap.Config
	switch format {
	case "json":
		zc = zap.NewProductionConfig()
	case "console":
		zc = zap.NewDevelopmentConfig()
	default:
		return fmt.Errorf("invalid log format %q", format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	return nil
}
