package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jvegaf/harmony-sub000/internal/analysis"
	"github.com/jvegaf/harmony-sub000/internal/config"
	"github.com/jvegaf/harmony-sub000/internal/library"
	"github.com/jvegaf/harmony-sub000/internal/web"
)

func cmdServe() *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			if cmd.Flags().Changed("listen") {
				cfg.ListenAddr = listenAddr
			}

			log := setupLogger(cfg)
			defer log.Close()

			db, err := library.Bootstrap(config.ExpandHome(cfg.DatabasePath))
			if err != nil {
				return fmt.Errorf("opening library: %w", err)
			}
			defer db.Close()
			store := library.NewStore(db)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			sched := analysis.NewScheduler(log, nil)
			go sched.Run(ctx)

			jobMgr := web.NewJobManager()
			jobMgr.StartCleanup(ctx.Done())

			server := web.NewServer(jobMgr, store, sched, cfg, log)

			httpServer := &http.Server{
				Addr:         cfg.ListenAddr,
				Handler:      server.Router(),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			serverErr := make(chan error, 1)
			go func() {
				log.Info("Listening on http://%s", cfg.ListenAddr)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-ctx.Done():
				log.Info("Shutting down server...")
				shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancelShutdown()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					log.Error("Server shutdown error: %v", err)
					return err
				}
				log.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (host:port)")

	return cmd
}
