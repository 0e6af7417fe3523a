package identity_adapter

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"encoding/base64"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseAuthClient - часть *auth.Client, которой пользуется адаптер.
type FirebaseAuthClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
}

// FirebaseIdentity проверяет ID-токены Firebase и удаляет учетные записи.
type FirebaseIdentity struct {
	client FirebaseAuthClient
}

func NewFirebaseIdentity(client FirebaseAuthClient) (*FirebaseIdentity, error) {
	if client == nil {
		return nil, fmt.Errorf("firebase auth client cannot be nil")
	}
	return &FirebaseIdentity{client: client}, nil
}

// NewFirebaseAuthClient создает клиент Firebase Auth по JSON сервисного аккаунта.
// Если JSON пуст, используется base64-вариант.
func NewFirebaseAuthClient(ctx context.Context, credentialsJSON, credentialsBase64 string) (*auth.Client, error) {
	creds := []byte(credentialsJSON)
	if len(creds) == 0 {
		decoded, err := base64.StdEncoding.DecodeString(credentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode firebase credentials: %w", err)
		}
		creds = decoded
	}
	if len(creds) == 0 {
		return nil, fmt.Errorf("firebase credentials are empty")
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
	}
	return client, nil
}

func (f *FirebaseIdentity) VerifyToken(ctx context.Context, idToken string) (*domain.Principal, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Warn("Firebase rejected the token", port.Fields{
			"component": "FirebaseIdentity",
			"reason":    err.Error(),
		})
		return nil, domain.ErrTokenInvalid
	}

	principal := &domain.Principal{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		principal.Email = email
	}
	if role, ok := token.Claims["role"].(string); ok {
		principal.Role = role
	}
	return principal, nil
}

// DeleteUserByEmail удаляет учетную запись провайдера. Отсутствие записи ошибкой не считается.
func (f *FirebaseIdentity) DeleteUserByEmail(ctx context.Context, email string) error {
	record, err := f.client.GetUserByEmail(ctx, email)
	if auth.IsUserNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up firebase user: %w", err)
	}
	if err := f.client.DeleteUser(ctx, record.UID); err != nil && !auth.IsUserNotFound(err) {
		return fmt.Errorf("failed to delete firebase user: %w", err)
	}
	return nil
}
