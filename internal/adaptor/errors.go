package adaptor

import (
	"net/http"
	"strings"

	"workspace-hub/pkg/utils"

	"go.uber.org/zap"
)

// handleServiceError maps service error messages to HTTP status codes.
// Shared across handlers so every domain reports the same way.
func handleServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "validation failed"):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, errMsg, nil)

	case strings.Contains(errMsg, "too many failed attempts"):
		log.Warn(operation+" failed - locked out", zap.Error(err))
		utils.ResponseTooManyRequests(w, errMsg)

	case strings.Contains(errMsg, "already registered"),
		strings.Contains(errMsg, "already taken"),
		strings.Contains(errMsg, "already verified"),
		strings.Contains(errMsg, "already linked"),
		strings.Contains(errMsg, "already in use"),
		strings.Contains(errMsg, "already a member"):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, errMsg)

	case strings.Contains(errMsg, "invalid credentials"),
		strings.Contains(errMsg, "invalid refresh token"),
		strings.Contains(errMsg, "invalid or expired reset token"):
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, errMsg)

	case strings.Contains(errMsg, "email not verified"),
		strings.Contains(errMsg, "not a member"),
		strings.Contains(errMsg, "only the workspace admin"),
		strings.Contains(errMsg, "cannot unlink"),
		strings.Contains(errMsg, "cannot remove"):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, errMsg)

	case strings.Contains(errMsg, "not found"),
		strings.Contains(errMsg, "not linked"):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, errMsg)

	case strings.Contains(errMsg, "invalid or expired"),
		strings.Contains(errMsg, "attempts remaining"),
		strings.Contains(errMsg, "unsupported provider"),
		strings.Contains(errMsg, "is not active"),
		strings.Contains(errMsg, "does not use reset tokens"),
		strings.Contains(errMsg, "failed to exchange"),
		strings.Contains(errMsg, "failed to fetch"):
		log.Warn(operation+" failed - bad request", zap.Error(err))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
