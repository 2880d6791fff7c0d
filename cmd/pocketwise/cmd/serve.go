package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pocketwise/internal/cache"
	"pocketwise/internal/cli"
	apphttp "pocketwise/internal/http"
	applog "pocketwise/internal/log"
)

const (
	shutdownTimeout    = 30 * time.Second
	cacheSweepInterval = 10 * time.Minute
)

func newServeCmd(o *globalOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API used by the browser widget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				o.cfg.Port = port
				if err := o.cfg.Validate(); err != nil {
					return err
				}
			}
			return runServe(cmd.Context(), o)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}

func runServe(parent context.Context, o *globalOptions) error {
	ctx, stop := cli.SignalContext(parent)
	defer stop()

	session, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer o.close(session)

	srv := apphttp.NewServer(":"+o.cfg.Port, session.Controller,
		apphttp.WithMetricsHandler(session.Metrics.Handler()),
		apphttp.WithLogger(o.logger))
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return cache.NewSweeper(o.logger, session.Controller.OptionsCache()).Run(gctx, cacheSweepInterval)
	})
	g.Go(func() error {
		o.logger.Info("Starting pocketwise server",
			applog.FieldOperation, applog.OpStartup, "port", o.cfg.Port, applog.FieldBackend, o.cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		o.logger.Info("Shutting down server", applog.FieldOperation, applog.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		o.logger.Error("Server error", applog.FieldError, err)
		return err
	}
	o.logger.Info("Server stopped gracefully")
	return nil
}
