package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kubev2v/taskengine/internal/services"
	"github.com/kubev2v/taskengine/internal/store"
	"github.com/kubev2v/taskengine/internal/util"
	"github.com/kubev2v/taskengine/pkg/scheduler"
	"github.com/kubev2v/taskengine/pkg/task"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	bold   = color.New(color.Bold)
)

type readOptions struct {
	*rootOptions
	waitAttempts int
	waitInterval time.Duration
	noProgress   bool
}

func newReadCmd(root *rootOptions) *cobra.Command {
	opts := &readOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "read FILE...",
		Short: "Read and hash files on the worker pool, showing aggregate progress",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args)
		},
	}

	cmd.Flags().IntVar(&opts.waitAttempts, "wait-attempts", 1, "times a missing file is looked up before giving up")
	cmd.Flags().DurationVar(&opts.waitInterval, "wait-interval", 200*time.Millisecond, "delay between two lookups of a missing file")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "do not render the progress bar")

	return cmd
}

type readJob struct {
	path   string
	size   int64
	future *scheduler.Future[services.LoadProgress, services.LoadOutcome]
}

func (o *readOptions) run(cmd *cobra.Command, paths []string) error {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []scheduler.Option{}
	if order, err := scheduler.ParseOrder(cfg.Pool.Order); err == nil {
		opts = append(opts, scheduler.WithOrder(order))
	}

	// an on-disk database keeps the journal of the run for the history command
	if cfg.Store.Path != store.MemoryPath {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		st, err := openStore(ctx, cfg.Store.Path)
		if err != nil {
			return err
		}
		defer closeStore(st)

		journal := services.NewJournal(st.History(), cfg.Store.JournalBuffer)
		defer journal.Close()
		opts = append(opts, scheduler.WithObserver(journal))
	}

	sched, pool := scheduler.Spawn(cfg.Pool.Workers, opts...)
	defer pool.Close()

	var total int64
	jobs := make([]readJob, 0, len(paths))
	for _, p := range paths {
		var size int64
		if info, err := os.Stat(p); err == nil {
			size = info.Size()
			total += size
		}
		f := scheduler.Schedule[services.LoadProgress, services.LoadOutcome](sched, services.NewLoadTask(p, o.waitAttempts, o.waitInterval), scheduler.WithName(p))
		jobs = append(jobs, readJob{path: p, size: size, future: f})
	}

	out := cmd.OutOrStdout()
	var bar *progressbar.ProgressBar
	if !o.noProgress {
		bar = progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription(fmt.Sprintf("Reading %d files", len(jobs))),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionClearOnFinish(),
		)
	}

	// poll from this goroutine; without workers the queue is drained here
	for !allComplete(jobs) {
		if cfg.Pool.Workers == 0 {
			sched.RunOnce()
		} else {
			time.Sleep(50 * time.Millisecond)
		}
		if bar != nil {
			_ = bar.Set64(min(readSoFar(jobs), total))
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	return report(out, jobs)
}

func allComplete(jobs []readJob) bool {
	for _, j := range jobs {
		if !j.future.IsComplete() {
			return false
		}
	}
	return true
}

func readSoFar(jobs []readJob) int64 {
	var n int64
	for _, j := range jobs {
		if j.future.IsComplete() {
			n += j.size
			continue
		}
		// the read stage is over once the outer task hashes
		p := j.future.Progress()
		if p.Stage == task.StageSecond {
			n += j.size
			continue
		}
		n += p.First.Second.Read
	}
	return n
}

func report(out io.Writer, jobs []readJob) error {
	failed := 0
	for _, j := range jobs {
		if err := j.future.Err(); err != nil {
			failed++
			red.Fprint(out, "FAIL ")
			fmt.Fprintf(out, "%s: %v\n", j.path, err)
			continue
		}

		res := j.future.Wait()
		if res.Err != nil {
			failed++
			yellow.Fprint(out, "ERR  ")
			fmt.Fprintf(out, "%s: %v\n", j.path, res.Err)
			continue
		}

		green.Fprint(out, "OK   ")
		fmt.Fprintf(out, "%s  %s  %s\n", res.Data.Checksum, util.HumanBytes(res.Data.Size), j.path)
	}

	if failed > 0 {
		bold.Fprintf(out, "%d of %d files failed\n", failed, len(jobs))
		return fmt.Errorf("%d files could not be read", failed)
	}
	return nil
}
