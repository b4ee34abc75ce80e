package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kiyora/animehub/pkg/auth"
	"github.com/kiyora/animehub/pkg/logger"
)

type contextKey string

const claimsKey contextKey = "claims"

func (s Server) LogMiddleware() mux.MiddlewareFunc {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := s.baseLogger.With(zap.String("request_path", r.URL.Path)).With(zap.String("id", uuid.New().String()))
			h.ServeHTTP(w, r.WithContext(logger.WithCtx(r.Context(), log)))
		})
	}
}

// AuthMiddleware requires a valid bearer token and stashes its claims on the
// request context.
func (s Server) AuthMiddleware() mux.MiddlewareFunc {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeResponse(w, http.StatusUnauthorized, GenericResponse{Message: "missing bearer token"})
				return
			}

			claims, err := s.tokens.Parse(token)
			if err != nil {
				writeResponse(w, http.StatusUnauthorized, GenericResponse{Message: "invalid or expired token"})
				return
			}

			h.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

// AdminMiddleware gates a subrouter to admin accounts. It must run after
// AuthMiddleware.
func (s Server) AdminMiddleware() mux.MiddlewareFunc {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromCtx(r.Context())
			if claims == nil || !claims.IsAdmin {
				writeResponse(w, http.StatusForbidden, GenericResponse{Message: "admin access required"})
				return
			}

			h.ServeHTTP(w, r)
		})
	}
}

func claimsFromCtx(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// userIDFromCtx resolves the authenticated user's object id. The bool is
// false when the token subject isn't a valid id.
func userIDFromCtx(ctx context.Context) (primitive.ObjectID, bool) {
	claims := claimsFromCtx(ctx)
	if claims == nil {
		return primitive.NilObjectID, false
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}

	return id, true
}
