package auth

import (
	"live-poll/errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MyV3ry-Strong!Password"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("WrongPassword", hash)
	req.NoError(err)
	req.False(match)
}

func TestComparePassword_RejectsGarbage(t *testing.T) {
	req := require.New(t)

	_, err := ComparePassword("whatever", "not-a-hash")

	req.Error(err)
}

func TestRegistrationValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr error
	}{
		{"Valid request", RegisterRequest{"Ada", "test@example.com", "ComplexPass123!"}, nil},
		{"Missing name", RegisterRequest{"", "test@example.com", "ComplexPass123!"}, errors.ErrInvalidRequest},
		{"Invalid email", RegisterRequest{"Ada", "notanemail", "ComplexPass123!"}, errors.ErrInvalidRequest},
		{"Password too short", RegisterRequest{"Ada", "test@example.com", "Short1!"}, errors.ErrInvalidRequest},
		{"Missing digit", RegisterRequest{"Ada", "test@example.com", "NoDigitPass!"}, errors.ErrInvalidPassword},
		{"Missing special char", RegisterRequest{"Ada", "test@example.com", "NoSpecialChar123"}, errors.ErrInvalidPassword},
		{"Missing uppercase", RegisterRequest{"Ada", "test@example.com", "nouppercase123!"}, errors.ErrInvalidPassword},
		{"Password too long", RegisterRequest{"Ada", "test@example.com", strings.Repeat("a", 73)}, errors.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, expiresAt, err := issuer.Generate(Identity{UserID: "u1", Name: "Ada"})
	req.NoError(err)
	req.WithinDuration(time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	identity, err := issuer.Validate(token)
	req.NoError(err)
	req.Equal(Identity{UserID: "u1", Name: "Ada"}, identity)
}

func TestTokenIssuer_RejectsForeignAndExpiredTokens(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	foreign, _, err := other.Generate(Identity{UserID: "u1"})
	req.NoError(err)
	_, err = issuer.Validate(foreign)
	req.ErrorIs(err, errors.ErrInvalidToken)

	expired := NewTokenIssuer("test-secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _, err := expired.Generate(Identity{UserID: "u1"})
	req.NoError(err)
	_, err = issuer.Validate(old)
	req.ErrorIs(err, errors.ErrInvalidToken)
}

func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
