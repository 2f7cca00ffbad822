package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ordermanagement/internal/handler"
	"ordermanagement/internal/metrics"
	"ordermanagement/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Orders    *handler.OrderHandler
	Customers *handler.CustomerHandler
	Products  *handler.ProductHandler
	Health    *handler.HealthHandler
}

type Options struct {
	// 空なら PATCH /orders/:id/status は認証なし
	JWTSecret string
	Log       *logrus.Logger
	Metrics   *metrics.Metrics
}

// New はミドルウェアとルートを組み立てたechoを返す。
func New(h Handlers, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(opts.Log))
	if opts.Metrics != nil {
		e.Use(middleware.Metrics(opts.Metrics))
	}

	RegisterRoutes(e, h, opts)
	return e
}

// Start はctxがキャンセルされるまで待ち、shutdownTimeout以内に止める。
func Start(ctx context.Context, e *echo.Echo, addr string, shutdownTimeout time.Duration, log *logrus.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("server started")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
