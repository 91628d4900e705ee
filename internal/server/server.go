// Package server runs a built container: the HTTP API, the gRPC health
// service, the realtime hub and the background workers. Everything stops
// when the context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/ayoo/internal/kernel"
	"github.com/shashiranjanraj/ayoo/pkg/database"
	"github.com/shashiranjanraj/ayoo/pkg/grpc"
	"github.com/shashiranjanraj/ayoo/pkg/logger"
)

const (
	shutdownTimeout = 15 * time.Second
	healthInterval  = 10 * time.Second
)

// Options select the listeners and in-process workers.
type Options struct {
	Port     string
	GRPCPort string // empty disables gRPC

	// QueueWorkers run in-process when positive. Set it to zero when a
	// separate queue:work process drains the queue.
	QueueWorkers int
	Scheduler    bool
}

// Run blocks until ctx is cancelled or a listener fails, then drains
// in-flight requests.
func Run(ctx context.Context, c *kernel.Container, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.Hub.Run(ctx)

	if c.Relay != nil {
		sub, err := c.Relay.Subscribe(ctx)
		if err != nil {
			return fmt.Errorf("server: realtime relay: %w", err)
		}
		go c.Relay.Run(ctx, sub)
	}

	if opts.QueueWorkers > 0 {
		c.Queue.StartWorkers(ctx, opts.QueueWorkers)
	}
	if opts.Scheduler {
		s, err := c.Schedule()
		if err != nil {
			return err
		}
		go s.Start(ctx)
	}

	errCh := make(chan error, 2)

	var gs *grpc.Server
	if opts.GRPCPort != "" {
		lis, err := grpc.Listen(opts.GRPCPort)
		if err != nil {
			return err
		}
		gs = grpc.New()
		go gs.WatchHealth(ctx, healthInterval, func(ctx context.Context) error {
			return database.Ping(ctx, c.DB)
		})
		go func() {
			if err := gs.Serve(lis); err != nil {
				errCh <- fmt.Errorf("server: grpc: %w", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              ":" + opts.Port,
		Handler:           c.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http: serving", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server: http: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-errCh:
		logger.Error("listener failed, shutting down", "error", runErr)
	}
	// Stopping the hub closes open event streams so Shutdown can drain.
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http: shutdown incomplete", "error", err)
	}
	if gs != nil {
		gs.Stop()
	}
	return runErr
}
