package auth

import (
	"chat-desk/domain"
	"chat-desk/errors"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MonMotDePasseTr0pSûr!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("MauvaisMDP", hash)
	req.NoError(err)
	req.False(match)

	_, err = ComparePassword(password, "$argon2id$garbage")
	req.Error(err)
}

func TestRegistrationValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"test@example.com", "ComplexPass123!"}, false},
		{"Invalid email", RegisterRequest{"notanemail", "ComplexPass123!"}, true},
		{"Password too short", RegisterRequest{"test@example.com", "Short1!"}, true},
		{"Missing digit", RegisterRequest{"test@example.com", "NoDigitPass!"}, true},
		{"Missing special char", RegisterRequest{"test@example.com", "NoSpecialChar123"}, true},
		{"Missing uppercase", RegisterRequest{"test@example.com", "nouppercase123!"}, true},
		{"Password too long (edge case)", RegisterRequest{"test@example.com", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				require.Error(t, err)
				require.Equal(t, errors.KindValidation, errors.KindOf(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	t.Run("should round trip the admin id", func(t *testing.T) {
		req := require.New(t)
		tokens := NewTokens("secret", "chat-desk", time.Hour)

		token, expiresAt, err := tokens.Issue("admin-1")
		req.NoError(err)
		req.True(expiresAt.After(time.Now()))

		adminID, err := tokens.Verify(token)
		req.NoError(err)
		req.Equal("admin-1", adminID)
	})

	t.Run("should reject an expired token", func(t *testing.T) {
		tokens := NewTokens("secret", "chat-desk", time.Minute)
		tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, _, err := tokens.Issue("admin-1")
		require.NoError(t, err)

		_, err = NewTokens("secret", "chat-desk", time.Minute).Verify(token)
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})

	t.Run("should reject another secret or issuer", func(t *testing.T) {
		req := require.New(t)
		token, _, err := NewTokens("secret", "chat-desk", time.Hour).Issue("admin-1")
		req.NoError(err)

		_, err = NewTokens("other", "chat-desk", time.Hour).Verify(token)
		req.ErrorIs(err, errors.ErrInvalidToken)

		_, err = NewTokens("secret", "someone-else", time.Hour).Verify(token)
		req.ErrorIs(err, errors.ErrInvalidToken)
	})

	t.Run("should reject a token without the admin role", func(t *testing.T) {
		claims := &AdminClaims{
			Role: domain.RoleParticipant,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "admin-1",
				Issuer:    "chat-desk",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = NewTokens("secret", "chat-desk", time.Hour).Verify(token)
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})

	t.Run("should reject garbage", func(t *testing.T) {
		_, err := NewTokens("secret", "chat-desk", time.Hour).Verify("invalid-token-string")
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})
}

func TestCredentialsFromRequest(t *testing.T) {
	t.Run("should read query parameters", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws?projectId=p1&participantUid=u1", nil)
		creds := CredentialsFromRequest(r)
		require.True(t, creds.IsParticipant())
		require.False(t, creds.IsAdmin())
		require.Equal(t, Credentials{ProjectID: "p1", ParticipantUID: "u1"}, creds)
	})

	t.Run("should read headers", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws", nil)
		r.Header.Set(HeaderAuthorization, "Bearer abc.def")
		creds := CredentialsFromRequest(r)
		require.True(t, creds.IsAdmin())
		require.Equal(t, "abc.def", creds.Token)
	})

	t.Run("should prefer the query over headers", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws?token=from-query", nil)
		r.Header.Set(HeaderAuthorization, "Bearer from-header")
		require.Equal(t, "from-query", CredentialsFromRequest(r).Token)
	})

	t.Run("should ignore other schemes", func(t *testing.T) {
		require.Empty(t, BearerToken("Basic dXNlcjpwYXNz"))
		require.Empty(t, BearerToken(""))
	})
}

func TestIdentityContext(t *testing.T) {
	req := require.New(t)

	_, ok := IdentityFrom(context.Background())
	req.False(ok)

	ctx := WithIdentity(context.Background(), domain.AdminCaller{AdminID: "admin-1"})
	identity, ok := IdentityFrom(ctx)
	req.True(ok)
	req.Equal(domain.RoleAdmin, identity.Role())
}

func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
