package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/portfoliohub/internal/app/models/dto"
	"github.com/yigit/portfoliohub/internal/pkg/apperrors"
	"github.com/yigit/portfoliohub/internal/pkg/logger"
)

// ErrorToResponse maps an application error to its HTTP status and error detail.
// The detail always carries the user-presentable reason.
func ErrorToResponse(err error) (int, *dto.ErrorDetail) {
	var (
		incomplete *apperrors.IncompleteSubmissionError
		validation *apperrors.ValidationError
		notFound   *apperrors.NotFoundError
		transition *apperrors.InvalidTransitionError
		storage    *apperrors.StorageError
		custom     *apperrors.CustomError
	)

	switch {
	case errors.As(err, &incomplete):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeIncompleteSubmission, incomplete.Error()).
			WithField("sections").
			WithDetails(map[string]interface{}{"missing": incomplete.Missing})

	case errors.As(err, &validation):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, validation.Message).
			WithField(validation.Field)

	case errors.As(err, &notFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, notFound.Error()).
			WithSeverity(dto.ErrorSeverityInfo)

	case errors.As(err, &transition):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, transition.Error()).
			WithDetails(map[string]interface{}{"status": transition.From, "action": transition.Action})

	case errors.Is(err, apperrors.ErrRendererUnavailable):
		return http.StatusServiceUnavailable, dto.NewErrorDetail(dto.ErrorCodeServiceUnavailable, "PDF rendering is currently unavailable").
			WithSeverity(dto.ErrorSeverityWarning)

	case errors.As(err, &storage):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "The portfolio store could not complete the request").
			WithSeverity(dto.ErrorSeverityCritical).
			WithDetails(storage.Op)

	case errors.Is(err, apperrors.ErrPermissionDenied):
		msg := "Permission denied"
		if errors.As(err, &custom) {
			msg = custom.Error()
		}
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, msg)

	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")

	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")

	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, err.Error())

	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, dto.NewErrorDetail(dto.ErrorCodeServiceUnavailable, "The request timed out")

	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

// HandleAPIError writes the error envelope for err and logs server-side failures
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ErrorToResponse(err)
	if status >= http.StatusInternalServerError {
		if gin.Mode() == gin.DebugMode {
			detail.WithDebugInfo("%v", err)
		}
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, dto.NewFailureResponse(detail))
}
