package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/platform/logging"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, domain.ErrUnbalancedTransaction) {
		return http.StatusUnprocessableEntity
	}
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindIntegrity:
		return http.StatusConflict
	case apperrors.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err at a level matching its status and writes the error body.
// Internal failures are not echoed to the caller.
func respondError(c *gin.Context, err error, msg string) {
	logger := logging.GetLoggerFromCtx(c.Request.Context())
	status := statusFor(err)
	kind := string(apperrors.KindOf(err))

	if status >= http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()), slog.Int("status", status))
		if status == http.StatusInternalServerError {
			c.JSON(status, ErrorResponse{Error: msg, Kind: kind})
			return
		}
	} else {
		logger.Warn(msg, slog.String("error", err.Error()), slog.Int("status", status))
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Kind: kind})
}

// bindError reports a body that is not valid JSON for the target.
func bindError(c *gin.Context, err error) {
	respondError(c, apperrors.NewValidationError("invalid request body: %s", err.Error()), "Invalid request format")
}
