// Package server serves the dashboard page and its update callback over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roach88/ghgdash/internal/dashboard"
	"github.com/roach88/ghgdash/internal/dispatch"
)

// Options configures the HTTP server.
type Options struct {
	Addr    string
	DevMode bool
}

// Server is the dashboard HTTP server.
type Server struct {
	router     *gin.Engine
	dispatcher *dispatch.Dispatcher
	app        *dashboard.App
	page       []byte
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds the router and renders the page with the default selections.
func New(opts Options, app *dashboard.App, d *dispatch.Dispatcher) (*Server, error) {
	if !opts.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router:     gin.New(),
		dispatcher: d,
		app:        app,
		logger:     app.Logger,
	}

	page, err := s.renderPage(context.Background())
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	s.page = page

	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery(), requestLogger(s.logger))

	s.router.GET("/", s.handlePage)
	s.router.POST("/_dash-update-component", s.handleUpdate)
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/forecast/:country", s.handleForecast)
	}
}

// renderPage dispatches each panel's default selection and inlines the
// resulting charts. Panels whose default fails are left to the client.
func (s *Server) renderPage(ctx context.Context) ([]byte, error) {
	layout := dashboard.BuildLayout(s.app)
	for i, p := range layout.Panels {
		res := s.dispatcher.Dispatch(ctx, p.Control.ID, p.Control.Value)
		if !res.OK() {
			s.logger.Warn("default panel failed", "control", p.Control.ID, "case", res.Case, "error", res.Error)
			continue
		}
		// go-chart output, not user input
		layout.Panels[i].Initial = template.HTML(res.SVG)
		if res.SVG == "" {
			// without SVG the client draws the figure JSON itself
			layout.Panels[i].State = res.Message
		}
	}

	var buf bytes.Buffer
	if err := dashboard.RenderHTML(&buf, layout); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}

	serveErr := make(chan error, 1)
	s.logger.Info("dashboard listening", "addr", s.httpServer.Addr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
