package main

import (
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	v1 "github.com/kubev2v/taskengine/api/v1"
	"github.com/kubev2v/taskengine/internal/util"
	"github.com/kubev2v/taskengine/pkg/client"
)

type remoteOptions struct {
	*rootOptions
	server   string
	token    string
	interval time.Duration
	detach   bool
}

func newRemoteCmd(root *rootOptions) *cobra.Command {
	opts := &remoteOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Drive a running taskengine server through its API",
	}
	cmd.PersistentFlags().StringVar(&opts.server, "server", "http://localhost:8000", "base url of the server")
	cmd.PersistentFlags().StringVar(&opts.token, "token", "", "bearer token, see the token command")

	workers := &cobra.Command{
		Use:   "workers",
		Short: "Print the status of the server's workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.workers(cmd)
		},
	}

	submit := &cobra.Command{
		Use:   "submit FILE...",
		Short: "Load files on the server and wait for them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.submit(cmd, args)
		},
	}
	submit.Flags().DurationVar(&opts.interval, "interval", 200*time.Millisecond, "delay between two polls of a load")
	submit.Flags().BoolVar(&opts.detach, "detach", false, "print the load ids and return without waiting")

	cancel := &cobra.Command{
		Use:   "cancel ID...",
		Short: "Release loads, abandoning the ones still running",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.cancel(cmd, args)
		},
	}

	cmd.AddCommand(workers, submit, cancel)

	return cmd
}

func (o *remoteOptions) client() (*client.Client, error) {
	return client.NewClient(o.server, client.WithToken(o.token))
}

func (o *remoteOptions) workers(cmd *cobra.Command) error {
	c, err := o.client()
	if err != nil {
		return err
	}

	status, err := c.Workers(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	bold.Fprintf(out, "order %s, %d queued, %d of %d workers alive\n", status.Order, status.Queued, status.Alive, len(status.Workers))

	table := tablewriter.NewWriter(out)
	table.Header("Worker", "State")
	for _, w := range status.Workers {
		_ = table.Append(fmt.Sprintf("%d", w.Id), w.State)
	}
	return table.Render()
}

func (o *remoteOptions) submit(cmd *cobra.Command, paths []string) error {
	c, err := o.client()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		id, err := c.SubmitLoad(ctx, p)
		if err != nil {
			return fmt.Errorf("failed to submit %s: %w", p, err)
		}
		ids = append(ids, id)
		if o.detach {
			fmt.Fprintf(out, "%s  %s\n", id, p)
		}
	}
	if o.detach {
		return nil
	}

	failed := 0
	for i, id := range ids {
		bar := progressbar.NewOptions(100,
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription(util.ShortID(id)),
			progressbar.OptionSetWidth(40),
			progressbar.OptionClearOnFinish(),
		)

		load, err := c.WaitLoad(ctx, id, o.interval, func(l v1.Load) {
			_ = bar.Set(int(l.Percent))
		})
		_ = bar.Finish()
		if err != nil {
			return err
		}

		switch {
		case load.State == "completed" && load.Checksum != nil:
			green.Fprint(out, "OK   ")
			fmt.Fprintf(out, "%s  %s  %s\n", *load.Checksum, util.HumanBytes(load.Size), paths[i])
		case load.Error != nil:
			failed++
			yellow.Fprint(out, "ERR  ")
			fmt.Fprintf(out, "%s: %s\n", paths[i], *load.Error)
		default:
			failed++
			red.Fprint(out, "FAIL ")
			fmt.Fprintf(out, "%s: load ended in state %s\n", paths[i], load.State)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d files could not be read", failed)
	}
	return nil
}

func (o *remoteOptions) cancel(cmd *cobra.Command, ids []string) error {
	c, err := o.client()
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := c.CancelLoad(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to cancel %s: %w", id, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "released %s\n", id)
	}
	return nil
}
