package identity_adapter

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const jwtIssuer = "dreamsquare-service"

// JWTVerifier проверяет HS256 токены, подписанные общим секретом.
// Используется для локального запуска вместо Firebase.
type JWTVerifier struct {
	signingKey []byte
}

func NewJWTVerifier(signingKey string) (*JWTVerifier, error) {
	if signingKey == "" {
		return nil, fmt.Errorf("JWT signing key cannot be empty")
	}
	return &JWTVerifier{signingKey: []byte(signingKey)}, nil
}

type principalClaims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken подписывает токен для uid/email. Нужен для локальной разработки и тестов.
func (v *JWTVerifier) IssueToken(principal domain.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &principalClaims{
		Email: principal.Email,
		Role:  principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UID,
			Issuer:    jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (v *JWTVerifier) VerifyToken(ctx context.Context, tokenString string) (*domain.Principal, error) {
	verifierLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "JWTVerifier",
		"method":    "VerifyToken",
	})

	token, err := jwt.ParseWithClaims(tokenString, &principalClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.signingKey, nil
	}, jwt.WithIssuer(jwtIssuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			verifierLogger.Warn("Token has expired", nil)
		} else {
			verifierLogger.Warn("Invalid token format or signature", port.Fields{"reason": err.Error()})
		}
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*principalClaims)
	if !ok || !token.Valid || claims.Email == "" {
		verifierLogger.Warn("Token has no usable claims", nil)
		return nil, domain.ErrTokenInvalid
	}

	return &domain.Principal{UID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}
