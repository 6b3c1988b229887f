package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/paperlens/analyzer"
	"github.com/hazyhaar/paperlens/config"
	"github.com/hazyhaar/paperlens/embedding"
	"github.com/hazyhaar/paperlens/feedback"
	"github.com/hazyhaar/paperlens/shield"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve analyses and feedback over HTTP",
	Long: `Start the HTTP server.

Routes:
  POST /analyze        analyze uploaded papers (multipart field "papers")
                       or server-side paths (JSON {"paths": [...]})
  GET  /chart          chart of the last analysis
  GET  /healthz        liveness
  POST /feedback       store a feedback entry
  GET  /feedback       recent feedback entries

Changes to the config file are picked up without a restart.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		m, logger, err := loadConfig()
		if err != nil {
			return err
		}
		cfg := m.Get()
		if cmd.Flags().Changed("addr") {
			cfg.ListenAddr = serveAddr
		}
		defer embedding.Close()

		h, err := newServeHandler(cfg, logger)
		if err != nil {
			return err
		}
		var current atomic.Pointer[http.Handler]
		current.Store(&h)

		m.OnChange(func(next *config.Config) {
			nh, err := reloadHandler(next, logger)
			if err != nil {
				logger.Error("config reload failed", "error", err)
				return
			}
			current.Store(&nh)
		})
		m.WatchConfig()

		srv := &http.Server{
			Addr: cfg.ListenAddr,
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				(*current.Load()).ServeHTTP(w, r)
			}),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			logger.Info("server starting", "addr", cfg.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
			close(errc)
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
		logger.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address (overrides listen_addr)")
}

// reloadHandler builds the router for a changed configuration on a fresh
// embedding model. Requests still running on the previous router keep the
// model they started with.
func reloadHandler(cfg *config.Config, logger *slog.Logger) (http.Handler, error) {
	ec := cfg.Embedding
	ec.Logger = logger
	embedding.Replace(ec)
	return newServeHandler(cfg, logger)
}

// newServeHandler builds the router for one configuration.
func newServeHandler(cfg *config.Config, logger *slog.Logger) (http.Handler, error) {
	a, err := analyzer.New(analyzerConfig(cfg, logger))
	if err != nil {
		return nil, err
	}
	fb := feedback.New(feedback.Config{Path: cfg.FeedbackPath, Logger: logger})

	r := chi.NewRouter()
	// Uploads carry whole papers; leave room for several per request.
	for _, mw := range shield.DefaultStack(logger, 4*cfg.MaxFileSize+1<<20) {
		r.Use(mw)
	}
	a.RegisterHTTP(r, cfg.AnalysisTimeout)
	r.Mount("/feedback", fb.Handler())
	return r, nil
}
