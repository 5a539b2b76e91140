package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	v1 "github.com/kubev2v/taskengine/api/v1"
	"github.com/kubev2v/taskengine/internal/handlers"
	"github.com/kubev2v/taskengine/internal/server"
	"github.com/kubev2v/taskengine/internal/services"
	"github.com/kubev2v/taskengine/pkg/scheduler"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the worker pool and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}
}

func run(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	zap.S().Named("run").Infow("configuration loaded", "config", cfg.DebugMap())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer closeStore(st)

	order, _ := scheduler.ParseOrder(cfg.Pool.Order)
	journal := services.NewJournal(st.History(), cfg.Store.JournalBuffer)
	sched, pool := scheduler.Spawn(cfg.Pool.Workers, scheduler.WithOrder(order), scheduler.WithObserver(journal))

	loader := services.NewLoader(sched, services.WithLoadStore(st.Loads()))
	limiter := rate.NewLimiter(rate.Limit(cfg.Server.LoadRate), cfg.Server.LoadBurst)
	h := handlers.New(loader, services.NewMonitor(sched), services.NewHistoryService(st), limiter)

	srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
		v1.RegisterHandlers(router, h)
	})
	if err != nil {
		pool.Close()
		journal.Close()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})

	err = g.Wait()

	// the server is down: release what is left, then drain the pool and the journal
	loader.Close()
	pool.Close()
	journal.Close()

	for _, exit := range pool.Exits() {
		if exit.Panicked() {
			zap.S().Named("run").Warnw("worker lost during run", "worker", exit.ID, "panic", exit.Panic)
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	zap.S().Named("run").Info("stopped")
	return nil
}
