// Package server hosts the report web API.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/russellb/gerrymander/pkg/handlers/reports"
	gerrymandermiddleware "github.com/russellb/gerrymander/pkg/server/middleware"
	"github.com/russellb/gerrymander/pkg/report"
	"github.com/russellb/gerrymander/pkg/services/config"
)

// WebAPI serves generated reports over HTTP.
type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

// Dependencies are the collaborators the API serves from.
type Dependencies struct {
	Client report.Querier
	Config *config.Config
}

// Config holds the server settings.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

// ConfigureRouter builds the report API router with its middleware chain.
func ConfigureRouter(logger zerolog.Logger, deps Dependencies) *chi.Mux {
	handler := reports.NewHandler(deps.Client, deps.Config)

	router := chi.NewRouter()
	router.Use(gerrymandermiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1/reports", func(r chi.Router) {
		r.Get("/changes", handler.GetChanges)
		r.Get("/reviewstats", handler.GetReviewStats)
		r.Get("/openstats", handler.GetOpenStats)
	})
	return router
}

// NewWebAPI builds the router and handlers.
func NewWebAPI(logger zerolog.Logger, cfg Config) *WebAPI {
	router := ConfigureRouter(logger, cfg.Dependencies)

	timeout := cfg.ShutdownTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    cfg.Addr,
			Handler: router,
		},
		shutdownTimeout: timeout,
	}
}

// Start runs the server until it fails or a termination signal arrives,
// then shuts down gracefully.
func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}
		if err != nil {
			return err
		}
	}

	return nil
}
