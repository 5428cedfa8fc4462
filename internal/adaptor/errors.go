package adaptor

import (
	"errors"
	"net/http"

	"event-booking/internal/data/entity"
	"event-booking/internal/usecase"
	"event-booking/pkg/utils"

	"go.uber.org/zap"
)

// handleServiceError maps the service error taxonomy onto the response envelope.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var capErr *usecase.CapacityError

	switch {
	case errors.As(err, &capErr):
		log.Info(operation+" rejected - capacity", zap.Int("remaining", capErr.Remaining))
		utils.ResponseConflict(w, capErr.Error(), map[string]any{
			"code":      "capacity",
			"remaining": capErr.Remaining,
		})

	case errors.Is(err, usecase.ErrCapacityConflict):
		log.Warn(operation+" failed - capacity conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error(), utils.ErrorCode("capacity"))

	case errors.Is(err, usecase.ErrInvalidInput):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), utils.ErrorCode("invalid_input"))

	case errors.Is(err, usecase.ErrInvalidCredentials):
		log.Warn(operation+" failed - invalid credentials")
		utils.ResponseUnauthorized(w, err.Error())

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrRetryable):
		log.Warn(operation+" failed - retryable", zap.Error(err))
		w.Header().Set("Retry-After", "1")
		utils.ResponseServiceUnavailable(w, usecase.ErrRetryable.Error(), utils.ErrorCode("retryable"))

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

func responseValidation(w http.ResponseWriter, fields map[string]string) {
	utils.ResponseBadRequest(w, "Validation failed", map[string]any{
		"code":   "invalid_input",
		"fields": fields,
	})
}

func responseInvalidBody(w http.ResponseWriter) {
	utils.ResponseBadRequest(w, "Invalid request body", utils.ErrorCode("invalid_input"))
}

func requesterFromContext(r *http.Request) (usecase.Requester, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return usecase.Requester{}, false
	}

	role, _ := utils.GetRoleFromContext(r.Context())
	return usecase.Requester{UserID: userID, Role: entity.UserRole(role)}, true
}
