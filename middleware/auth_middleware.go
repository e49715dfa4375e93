package middleware

import (
	"context"
	"errors"
	"net/http"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"

	"github.com/andrewpaige1/formcraft-api/auth"
	"github.com/andrewpaige1/formcraft-api/logger"
	"github.com/andrewpaige1/formcraft-api/utils"
)

// EnsureValidToken rejects requests without a valid bearer token. Expired and
// invalid tokens get the same answer. The authenticated user id is stored
// under jwtmiddleware.ContextKey{}.
func EnsureValidToken(guard *auth.Guard, log *logger.Logger) func(http.Handler) http.Handler {
	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		if errors.Is(err, jwtmiddleware.ErrJWTMissing) {
			utils.WriteError(w, http.StatusUnauthorized, "Access token required")
			return
		}
		log.Debug("Rejected bearer token", "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusUnauthorized, "Invalid or expired token")
	}

	authenticate := func(ctx context.Context, token string) (interface{}, error) {
		return guard.Authenticate(ctx, token)
	}
	mw := jwtmiddleware.New(
		authenticate,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)
	return mw.CheckJWT
}
