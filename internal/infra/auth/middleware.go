package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xela07ax/hr-console/internal/domain"
	"github.com/xela07ax/hr-console/internal/policy"
	"go.uber.org/zap"
)

// TokenValidator - проверка подписи и срока токена
type TokenValidator interface {
	VerifyToken(tokenStr string) (*domain.CustomClaims, error)
}

// CallerResolver превращает учетную запись из токена в полноценную личность:
// сотрудник, должность, подразделение. Читается на каждый запрос, чтобы смена
// должности действовала сразу, а не после истечения токена.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, claims *domain.CustomClaims) (policy.Caller, error)
}

func NewMiddleware(v TokenValidator, resolver CallerResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if raw == "" {
				// браузерный WebSocket не умеет выставлять заголовки
				raw = r.URL.Query().Get("access_token")
			}
			if raw == "" {
				unauthorized(w)
				return
			}

			claims, err := v.VerifyToken(raw)
			if err != nil {
				logger.Warn("auth failure", zap.Error(err))
				unauthorized(w)
				return
			}

			caller, err := resolver.ResolveCaller(r.Context(), claims)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) || errors.Is(err, domain.ErrNotFound) {
					logger.Warn("caller not resolvable", zap.String("user_id", claims.UserID), zap.Error(err))
					unauthorized(w)
					return
				}
				logger.Error("caller resolution failed", zap.String("user_id", claims.UserID), zap.Error(err))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(policy.WithCaller(r.Context(), caller)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthenticated"})
}
