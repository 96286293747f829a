package middleware

import (
	"context"
	"net/http"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/domain"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/logger"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/utils"
)

// AuthMiddleware authenticates the bearer token or accessToken cookie and
// stores the caller in the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := utils.TokenFromRequest(r)
		if tokenString == "" {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: No token provided")
			return
		}

		claims, err := utils.ValidateJWT(tokenString)
		if err != nil {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: Invalid token")
			return
		}

		// Token claims are trusted as is; roles are not re-read per request.
		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		role, _ := claims["role"].(string)

		user := &domain.User{
			ID:    sub,
			Email: email,
			Role:  role,
		}

		ctx := context.WithValue(r.Context(), domain.UserContextKey, user)
		userLogger := logger.WithUserID(*logger.WithContext(ctx), sub)
		ctx = logger.NewContext(ctx, &userLogger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
