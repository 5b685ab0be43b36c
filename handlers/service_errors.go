package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/YogindraChaudhari/Product-Advisor/services"
	"github.com/YogindraChaudhari/Product-Advisor/utils"
)

// errorStatus maps a domain error type to its HTTP status and error code
func errorStatus(errType services.ErrorType) (int, string) {
	switch errType {
	case services.ErrorTypeValidation:
		return http.StatusBadRequest, "bad_request"
	case services.ErrorTypeConfiguration:
		return http.StatusBadRequest, "invalid_provider"
	case services.ErrorTypeUnauthorized:
		return http.StatusUnauthorized, "unauthorized"
	case services.ErrorTypeForbidden:
		return http.StatusForbidden, "forbidden"
	case services.ErrorTypeNotFound:
		return http.StatusNotFound, "not_found"
	case services.ErrorTypeGeneration:
		return http.StatusInternalServerError, "generation_failed"
	case services.ErrorTypeStorage:
		return http.StatusInternalServerError, "not_saved"
	case services.ErrorTypeExternal:
		return http.StatusBadGateway, "bad_gateway"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// HandleServiceError maps domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	errType := services.GetErrorType(err)
	status, code := errorStatus(errType)

	message := services.GetErrorMessage(err, "An unexpected error occurred")
	details := services.GetErrorDetails(err)

	switch errType {
	case services.ErrorTypeInternal:
		// Internal causes stay in the logs
		logger.Error("internal server error", zap.Error(err))
		details = nil
	case "":
		logger.Error("unhandled error type", zap.Error(err))
		details = nil
	case services.ErrorTypeExternal, services.ErrorTypeGeneration, services.ErrorTypeStorage:
		logger.Warn("request failed", zap.String("type", string(errType)), zap.Error(err))
	default:
		logger.Debug("handled service error",
			zap.String("type", string(errType)),
			zap.String("message", message))
	}

	if len(details) == 0 {
		details = nil
	}

	if writeErr := utils.WriteError(w, status, code, message, details); writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}
}
