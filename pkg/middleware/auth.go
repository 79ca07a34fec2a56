package middleware

import (
	"net/http"
	"strings"

	"workspace-hub/internal/data/repository"
	"workspace-hub/pkg/utils"

	"go.uber.org/zap"
)

// Auth validates the Bearer access token: signature, expiry, token type,
// blacklist, and that the subject is still a live account. On success the
// user identity and the raw token land in the request context.
func Auth(config utils.JWTConfig, repo *repository.Repository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}
			token := parts[1]

			// Blacklist check comes before decode so a revoked token is
			// rejected even while its signature and expiry still hold
			revoked, err := repo.Blacklist.IsRevoked(r.Context(), token)
			if err != nil {
				logger.Error("Failed to check token revocation", zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if revoked {
				utils.ResponseUnauthorized(w, "Token has been revoked")
				return
			}

			claims, err := utils.DecodeToken(config, token)
			if err != nil {
				logger.Warn("Invalid token", zap.Error(err))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			// Refresh and reset tokens never grant API access
			if claims.Type != "" {
				logger.Warn("Non-access token used for API access", zap.String("type", claims.Type))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			userID, err := utils.ParseUUID(claims.UserID)
			if err != nil {
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			user, err := repo.User.FindByID(r.Context(), userID)
			if err != nil {
				logger.Error("Failed to load user for auth",
					zap.Error(err), zap.String("user_id", claims.UserID))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if user == nil || !user.IsActive {
				logger.Warn("Token for missing or inactive account", zap.String("user_id", claims.UserID))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := utils.SetUserContext(r.Context(), user.ID, user.Email)
			ctx = utils.SetTokenContext(ctx, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
