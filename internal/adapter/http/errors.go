package http

import (
	"errors"
	"net/http"

	"autoempeno-backend/internal/domain/asset"
	"autoempeno-backend/internal/domain/pledge"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	codeValidation = "validation_failed"
	codeBadRequest = "bad_request"
	codeInternal   = "internal_error"
)

// writeError maps use-case errors onto HTTP status codes.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.JSON(status, ErrorResponse{Error: "internal error", Code: code})
	}
	return c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, pledge.ErrNotFound):
		return http.StatusNotFound, pledge.Code(err)
	case errors.Is(err, asset.ErrNotFound):
		return http.StatusNotFound, "asset_not_found"
	case errors.Is(err, asset.ErrDuplicate):
		return http.StatusConflict, "asset_duplicate"
	case pledge.IsConflict(err):
		return http.StatusConflict, pledge.Code(err)
	case errors.Is(err, asset.ErrInvalidInput):
		return http.StatusUnprocessableEntity, "invalid_asset"
	case pledge.IsClientError(err):
		return http.StatusUnprocessableEntity, pledge.Code(err)
	}
	return http.StatusInternalServerError, codeInternal
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: codeBadRequest})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Code:    codeValidation,
		Details: ToFieldErrors(err),
	})
}
