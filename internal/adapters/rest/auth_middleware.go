package rest

import (
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"dreamsquare-service/internal/core/port/usecases_port"
	"errors"
	"net/http"
	"strings"
)

// AuthMiddleware проверяет bearer-токен у провайдера идентификации и кладет
// пользователя в контекст. Нет заголовка или токена - 401, токен не прошел проверку - 403.
func AuthMiddleware(verifier port.TokenVerifierPort) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := contextkeys.LoggerFromContext(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteJSONError(w, http.StatusUnauthorized, "unauthorized access")
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
			if token == "" {
				WriteJSONError(w, http.StatusUnauthorized, "unauthorized access")
				return
			}

			principal, err := verifier.VerifyToken(r.Context(), token)
			if err != nil || principal == nil {
				logger.Warn("Token verification failed", port.Fields{"error": errString(err)})
				WriteJSONError(w, http.StatusForbidden, "forbidden access")
				return
			}

			ctx := contextkeys.ContextWithPrincipal(r.Context(), principal)
			ctx = contextkeys.ContextWithLogger(ctx, logger.WithFields(port.Fields{"principal_email": principal.Email}))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole пропускает запрос, только если роль пользователя из хранилища входит в roles.
// Должна стоять после AuthMiddleware.
func RequireRole(roleUC usecases_port.GetUserRoleUseCasePort, roles ...domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := contextkeys.LoggerFromContext(r.Context())

			principal, ok := contextkeys.PrincipalFromContext(r.Context())
			if !ok {
				WriteJSONError(w, http.StatusUnauthorized, "unauthorized access")
				return
			}

			role, err := roleUC.Execute(r.Context(), principal.Email)
			if errors.Is(err, domain.ErrNotFound) {
				WriteJSONError(w, http.StatusForbidden, "forbidden access")
				return
			}
			if err != nil {
				writeUseCaseError(w, logger, err)
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Warn("Role is not allowed for route", port.Fields{"role": string(role)})
			WriteJSONError(w, http.StatusForbidden, "forbidden access")
		})
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
