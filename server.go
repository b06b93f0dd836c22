package pubsite

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/eringen/pubsite/logger"
)

// Server serves a generated site for local preview.
type Server struct {
	cfg  SiteConfig
	echo *echo.Echo
	log  logger.Logger
}

// NewServer creates a preview server for the output directory of cfg.
func NewServer(cfg SiteConfig, log logger.Logger) *Server {
	cfg.setDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	s := &Server{
		cfg:  cfg,
		echo: echo.New(),
		log:  log,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.setupMiddleware()
	return s
}

// Handler exposes the server's routes, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) setupMiddleware() {
	e := s.echo
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Info("request",
				logger.String("method", v.Method),
				logger.String("uri", v.URI),
				logger.Int("status", v.Status),
				logger.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{Level: 5}))

	// Pages live at /<permalink>/index.html; files with an extension are
	// served as is.
	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			return path.Ext(c.Request().URL.Path) != ""
		},
	}))

	e.Use(noCache)

	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Root:  s.cfg.OutputDir,
		Index: "index.html",
	}))
}

// noCache keeps the browser from holding on to pages between rebuilds.
func noCache(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Cache-Control", "no-cache")
		return next(c)
	}
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusNotFound {
		if page, readErr := os.ReadFile(filepath.Join(s.cfg.OutputDir, "404.html")); readErr == nil {
			_ = c.HTMLBlob(http.StatusNotFound, page)
			return
		}
	}
	if he == nil || he.Code >= 500 {
		s.log.Error("server error", logger.String("uri", c.Request().RequestURI), logger.Error(err))
	}
	s.echo.DefaultHTTPErrorHandler(err, c)
}

// Start listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving", logger.String("addr", s.cfg.Addr), logger.String("dir", s.cfg.OutputDir))
		errCh <- s.echo.Start(s.cfg.Addr)
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}
