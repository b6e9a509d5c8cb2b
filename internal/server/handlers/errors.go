package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gagesampsonn/barbershop/internal/domain/apperrors"
)

// statusFor maps an application error to an HTTP status and public message.
func statusFor(err error) (int, string) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "request timed out"
	}
	appErr, ok := apperrors.From(err)
	if !ok {
		return http.StatusInternalServerError, "internal server error"
	}
	switch appErr.Code {
	case apperrors.CodeValidation:
		return http.StatusBadRequest, appErr.Message
	case apperrors.CodeNotFound:
		return http.StatusNotFound, appErr.Message
	case apperrors.CodeConflict:
		return http.StatusConflict, appErr.Message
	case apperrors.CodeUnavailable, apperrors.CodeNotConfigured:
		return http.StatusServiceUnavailable, appErr.Message
	case apperrors.CodeUpstream:
		return http.StatusBadGateway, appErr.Message
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, message := statusFor(err)
	fields := []zap.Field{zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err)}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", fields...)
	} else {
		logger.Warn("request rejected", fields...)
	}
	c.JSON(status, gin.H{"error": message})
}

// bindingError turns a binding failure into a validation error with a readable message.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, describeField(fe))
		}
		return apperrors.Validation("%s", strings.Join(parts, "; "))
	}
	return apperrors.Validation("invalid request body: %v", err)
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "timeofday":
		return fmt.Sprintf("%s must be a time like 09:00", field)
	case "weekday":
		return fmt.Sprintf("%s must be between 0 and 6", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must have %s entries", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// intQuery reads an optional integer query parameter within [lo, hi].
func intQuery(c *gin.Context, name string, fallback, lo, hi int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validation("%s must be an integer", name)
	}
	if value < lo || value > hi {
		return 0, apperrors.Validation("%s must be between %d and %d", name, lo, hi)
	}
	return value, nil
}

func boolQuery(c *gin.Context, name string) (bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.Validation("%s must be true or false", name)
	}
	return value, nil
}
