package contextkeys

import (
	"context"
	"dreamsquare-service/internal/core/domain"
)

type principalKeyType struct{}

var principalKey = principalKeyType{}

// ContextWithPrincipal помещает проверенного пользователя в контекст запроса.
func ContextWithPrincipal(ctx context.Context, principal *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// PrincipalFromContext возвращает пользователя, положенного auth middleware.
func PrincipalFromContext(ctx context.Context) (*domain.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(*domain.Principal)
	return principal, ok && principal != nil
}
