package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/benedict-erwin/lokiquery/http/middleware"
	"github.com/benedict-erwin/lokiquery/http/registry"
	"github.com/benedict-erwin/lokiquery/internal/constants"
	"github.com/benedict-erwin/lokiquery/pkg/logger"
	"github.com/benedict-erwin/lokiquery/pkg/metrics"
	"github.com/benedict-erwin/lokiquery/pkg/response"
)

const shutdownTimeout = 10 * time.Second

// New builds the echo instance with middleware, error handling and every
// registered route. metricsPath is skipped when m is nil or the path empty.
func New(m *metrics.Metrics, metricsPath string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger(m))
	e.HTTPErrorHandler = errorHandler

	registry.SetupAllRoutes(e)
	if m != nil && metricsPath != "" {
		e.GET(metricsPath, echo.WrapHandler(m.Handler()))
	}
	return e
}

// errorHandler renders echo errors in the standard envelope
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := constants.CodeInternalError
	message := constants.GetErrorMessage(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = codeForStatus(he.Code)
		message = constants.GetErrorMessage(code)
		if he.Message != nil {
			message = fmt.Sprintf("%v", he.Message)
		}
	}

	if err := response.FailWithCodeAndMessage(c, code, message); err != nil {
		logger.WithScope("errorHandler").Error().Err(err).Msg("Failed to write error response")
	}
}

func codeForStatus(status int) int {
	switch status {
	case http.StatusBadRequest:
		return constants.CodeBadRequest
	case http.StatusUnauthorized:
		return constants.CodeUnauthorized
	case http.StatusForbidden:
		return constants.CodeForbidden
	case http.StatusNotFound:
		return constants.CodeEndpointNotFound
	case http.StatusMethodNotAllowed:
		return constants.CodeBadRequest
	case http.StatusConflict:
		return constants.CodeConflict
	case http.StatusTooManyRequests:
		return constants.CodeRateLimit
	case http.StatusBadGateway:
		return constants.CodeBadGateway
	case http.StatusServiceUnavailable:
		return constants.CodeServiceUnavailable
	case http.StatusGatewayTimeout:
		return constants.CodeGatewayTimeout
	}
	return constants.CodeInternalError
}

// Start serves e on port until SIGINT or SIGTERM, then shuts down
// gracefully and runs cleanup
func Start(e *echo.Echo, port int, cleanup func()) error {
	log := logger.WithScope("startServer")

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", port)
		log.Info().Str("addr", addr).Int("routes", len(e.Routes())).Msg("Starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("Server failed to start")
		if cleanup != nil {
			cleanup()
		}
		return err
	case <-quit:
	}
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := e.Shutdown(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	if cleanup != nil {
		cleanup()
	}
	log.Info().Msg("Server gracefully stopped")
	return err
}
