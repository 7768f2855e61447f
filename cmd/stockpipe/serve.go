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

	"github.com/swipefolio/stockpipe/internal/api"
	"github.com/swipefolio/stockpipe/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only HTTP API for the app backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		lbCache := openCache()
		if lbCache != nil {
			defer lbCache.Close()
		}

		window := func() pipeline.Window {
			w, err := analysisWindow()
			if err != nil {
				return pipeline.YTDWindow(time.Now().UTC())
			}
			return w
		}

		handler := api.NewHandler(db, lbCache, cfg.Report.TopN, cfg.Report.MinDataPoints, window, logger)
		router := api.SetupRoutes(handler)

		addr := cfg.Server.Host + ":" + cfg.Server.Port
		server := &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("starting API server", "addr", addr)
			errCh <- server.ListenAndServe()
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case sig := <-quit:
			logger.Info("shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(ctx)
		}
	},
}
