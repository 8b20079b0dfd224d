package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/config"
	"github.com/chiragvgohil-05/soffa-clg/internal/middleware"
	"github.com/chiragvgohil-05/soffa-clg/internal/session"
	"github.com/chiragvgohil-05/soffa-clg/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

type Deps struct {
	Config   config.Config
	Registry *session.Registry
	Catalog  *usecase.CatalogUsecase
	Public   *usecase.AccountUsecase // 会員登録（匿名）
	Logger   *slog.Logger
}

// New は echo を組み立てる（listen はしない）
func New(d Deps) *echo.Echo {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(middleware.Metrics())
	if d.Config.FEURL != "" {
		//Cookie を送るので origin は固定
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     []string{d.Config.FEURL},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowCredentials: true,
		}))
	}
	e.Use(middleware.LoadSession(d.Registry))

	RegisterRoutes(e, d)
	return e
}

// Run は ctx が終わるまで待ち受け、終わったら graceful shutdown する。
// 待ち受け中はアイドルセッションを定期的に掃除する。
func Run(ctx context.Context, e *echo.Echo, d Deps) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	go sweepSessions(ctx, d.Registry, d.Config.SessionIdleTTL)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", slog.String("addr", d.Config.Addr()))
		if err := e.Start(d.Config.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func sweepSessions(ctx context.Context, reg *session.Registry, idle time.Duration) {
	if idle <= 0 {
		return
	}
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			reg.Sweep(now, idle)
		}
	}
}
