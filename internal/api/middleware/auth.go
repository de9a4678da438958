package middleware

import (
	"context"
	"errors"
	"net/http"

	"internboard/internal/common"
	"internboard/internal/common/security"
	"internboard/internal/domain/model"
	"internboard/internal/domain/repository"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const CurrentUserCtxKey contextKey = "currentUser"

// Authenticator verifies the bearer token already parsed by
// jwtauth.Verifier, resolves the encoded user against the user store and
// attaches the full record (hash cleared) to the request context. Identity
// is decided here; role restrictions are per-route.
func Authenticator(userRepo repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if security.TokenAuth == nil {
				common.RespondWithError(w, http.StatusInternalServerError, "Server configuration error")
				return
			}

			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				switch {
				case errors.Is(err, jwtauth.ErrNoTokenFound):
					common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
				case errors.Is(err, jwtauth.ErrExpired):
					common.RespondWithError(w, http.StatusUnauthorized, "Token expired. Please login again")
				default:
					common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				}
				return
			}

			userID, err := security.GetUserIDFromClaims(claims)
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
				return
			}

			user, err := userRepo.FindByID(r.Context(), userID)
			if err != nil {
				// Token may outlive its user.
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token. User not found")
				return
			}
			user.HashedPassword = ""

			ctx := context.WithValue(r.Context(), CurrentUserCtxKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUserFromContext(r.Context())
		if !ok || user.Role != model.RoleAdmin {
			common.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext returns the authenticated user attached by Authenticator.
func GetUserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(CurrentUserCtxKey).(*model.User)
	return user, ok
}
