package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ticinfraestructura/sigah-sub000/internal/generated/servers"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

func statusOf(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation:
		return http.StatusUnprocessableEntity
	case errs.KindForbidden:
		return http.StatusForbidden
	case errs.KindInvalidTransition, errs.KindConflict, errs.KindInsufficientStock:
		return http.StatusConflict
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as {code, message}. Internal errors are logged and their
// text is not sent to the client.
func (s *Server) fail(ctx echo.Context, err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return writeHTTPError(ctx, httpErr)
	}

	kind := errs.KindOf(err)
	status := statusOf(kind)
	message := err.Error()
	if kind == errs.KindInternal {
		s.logger.ErrorContext(ctx.Request().Context(), "request failed",
			"method", ctx.Request().Method,
			"path", ctx.Path(),
			"error", err,
		)
		message = http.StatusText(status)
	}

	return ctx.JSON(status, servers.Error{
		Code:    kind.String(),
		Message: message,
	})
}

func writeHTTPError(ctx echo.Context, httpErr *echo.HTTPError) error {
	code := strings.ToUpper(strings.ReplaceAll(http.StatusText(httpErr.Code), " ", "_"))
	if code == "" {
		code = errs.KindInternal.String()
	}
	message, ok := httpErr.Message.(string)
	if !ok {
		message = http.StatusText(httpErr.Code)
	}
	return ctx.JSON(httpErr.Code, servers.Error{
		Code:    code,
		Message: message,
	})
}

// errorHandler renders errors that never reached a handler, such as unknown
// routes and malformed path parameters, in the API error shape.
func errorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		httpErr = echo.NewHTTPError(http.StatusInternalServerError)
	}
	_ = writeHTTPError(ctx, httpErr)
}
