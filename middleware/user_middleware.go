package middleware

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/andrewpaige1/formcraft-api/logger"
	"github.com/andrewpaige1/formcraft-api/models"
	"github.com/andrewpaige1/formcraft-api/utils"
)

type contextKey string

const userKey contextKey = "user"

// SyncUserMiddleware loads the user named by the token subject and attaches it
// to the request context. It must run after EnsureValidToken.
func SyncUserMiddleware(db *gorm.DB, log *logger.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := utils.GetUserID(r)
		if !ok {
			utils.WriteError(w, http.StatusUnauthorized, "User not authenticated")
			return
		}

		var user models.User
		if err := db.WithContext(r.Context()).Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.WriteError(w, http.StatusUnauthorized, "User not authenticated")
				return
			}
			log.Error("Failed to load user", "user_id", userID, "error", err)
			utils.WriteError(w, http.StatusInternalServerError, "Something went wrong!")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, &user)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// CurrentUser returns the user attached by SyncUserMiddleware.
func CurrentUser(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(userKey).(*models.User)
	return user, ok && user != nil
}
