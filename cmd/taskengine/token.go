package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kubev2v/taskengine/internal/server/middlewares"
)

type tokenOptions struct {
	*rootOptions
	subject string
	ttl     time.Duration
}

func newTokenCmd(root *rootOptions) *cobra.Command {
	opts := &tokenOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token accepted by the API when auth is enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Auth.Secret == "" {
				return errors.New("no auth secret configured, set --auth-secret or TASKENGINE_AUTH_SECRET")
			}
			if opts.ttl <= 0 {
				return fmt.Errorf("token ttl must be positive, got %s", opts.ttl)
			}

			token, err := middlewares.NewToken([]byte(cfg.Auth.Secret), opts.subject, opts.ttl)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.subject, "subject", "taskengine-cli", "subject claim of the token")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", time.Hour, "validity of the token")

	return cmd
}
