package middleware

import (
	"net/http"

	domainerrors "librarian/internal/domain/errors"
	"librarian/internal/errors"

	"github.com/labstack/echo/v4"
)

// responseStatus predicts the status the error handler will write for err.
// Middleware sees the handler error before echo renders it.
func responseStatus(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPCode()
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	return http.StatusInternalServerError
}
