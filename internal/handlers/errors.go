package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/labstack/echo/v4"
)

var statusByCode = map[string]int{
	models.CodeValidation:       http.StatusBadRequest,
	models.CodeNotFound:         http.StatusNotFound,
	models.CodeConflict:         http.StatusConflict,
	models.CodeAlreadyExists:    http.StatusConflict,
	models.CodeForbidden:        http.StatusForbidden,
	models.CodeUnauthorized:     http.StatusUnauthorized,
	models.CodeInvalidOperation: http.StatusBadRequest,
	models.CodeRateLimited:      http.StatusTooManyRequests,
}

var codeByStatus = map[int]string{
	http.StatusBadRequest:            models.CodeValidation,
	http.StatusUnauthorized:          models.CodeUnauthorized,
	http.StatusForbidden:             models.CodeForbidden,
	http.StatusNotFound:              models.CodeNotFound,
	http.StatusMethodNotAllowed:      "METHOD_NOT_ALLOWED",
	http.StatusRequestEntityTooLarge: "PAYLOAD_TOO_LARGE",
	http.StatusTooManyRequests:       models.CodeRateLimited,
}

// errorResponse maps err to a status and a standardized body
func errorResponse(err error) (int, models.ErrorResponse) {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		if status, ok := statusByCode[appErr.Code]; ok {
			return status, models.ErrorResponse{Error: appErr.Message, Code: appErr.Code}
		}
		return http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error", Code: models.CodeInternal}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			return he.Code, models.ErrorResponse{Error: "Internal server error", Code: models.CodeInternal}
		}
		msg := he.Message
		if m, ok := msg.(string); ok {
			return he.Code, models.ErrorResponse{Error: m, Code: codeByStatus[he.Code]}
		}
		return he.Code, models.ErrorResponse{Error: fmt.Sprint(msg), Code: codeByStatus[he.Code]}
	}

	return http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error", Code: models.CodeInternal}
}

// NewHTTPErrorHandler renders every handler error as {"error", "code"} and logs server faults
func NewHTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				slog.String("method", c.Request().Method),
				slog.String("path", c.Path()),
				slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				slog.String("error", err.Error()),
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.Error("failed to write error response", slog.String("error", writeErr.Error()))
		}
	}
}
