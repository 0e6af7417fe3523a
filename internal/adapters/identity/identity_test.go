package identity_adapter

import (
	"context"
	"dreamsquare-service/internal/core/domain"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTVerifier(t *testing.T) {
	ctx := context.Background()
	v, err := NewJWTVerifier("secret")
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		token, err := v.IssueToken(domain.Principal{UID: "u1", Email: "a@x.io", Role: "agent"}, time.Hour)
		require.NoError(t, err)

		p, err := v.VerifyToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "u1", p.UID)
		assert.Equal(t, "a@x.io", p.Email)
		assert.Equal(t, "agent", p.Role)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := v.IssueToken(domain.Principal{UID: "u1", Email: "a@x.io"}, -time.Minute)
		require.NoError(t, err)
		_, err = v.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("other key", func(t *testing.T) {
		other, err := NewJWTVerifier("another-secret")
		require.NoError(t, err)
		token, err := other.IssueToken(domain.Principal{UID: "u1", Email: "a@x.io"}, time.Hour)
		require.NoError(t, err)
		_, err = v.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"email": "a@x.io", "iss": jwtIssuer}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = v.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.VerifyToken(ctx, "not.a.token")
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	_, err = NewJWTVerifier("")
	assert.Error(t, err)
}

type fakeFirebase struct {
	token     *auth.Token
	verifyErr error
	users     map[string]string
	deleted   []string
	lookupErr error
}

func (f *fakeFirebase) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	return f.token, f.verifyErr
}

func (f *fakeFirebase) GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	uid, ok := f.users[email]
	if !ok {
		return nil, errors.New("no user")
	}
	return &auth.UserRecord{UserInfo: &auth.UserInfo{UID: uid, Email: email}}, nil
}

func (f *fakeFirebase) DeleteUser(ctx context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return nil
}

func TestFirebaseIdentity(t *testing.T) {
	ctx := context.Background()

	fake := &fakeFirebase{
		token: &auth.Token{UID: "fb-1", Claims: map[string]interface{}{"email": "b@x.io"}},
		users: map[string]string{"b@x.io": "fb-1"},
	}
	id, err := NewFirebaseIdentity(fake)
	require.NoError(t, err)

	p, err := id.VerifyToken(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "fb-1", p.UID)
	assert.Equal(t, "b@x.io", p.Email)

	require.NoError(t, id.DeleteUserByEmail(ctx, "b@x.io"))
	assert.Equal(t, []string{"fb-1"}, fake.deleted)

	assert.Error(t, id.DeleteUserByEmail(ctx, "unknown@x.io"))

	fake.verifyErr = errors.New("expired")
	_, err = id.VerifyToken(ctx, "token")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = NewFirebaseIdentity(nil)
	assert.Error(t, err)
}
