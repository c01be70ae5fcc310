package auth

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"campusdrive/internal/domain"
	"campusdrive/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHMACVerifier(t *testing.T) {
	v, err := NewHMACVerifier("s3cret", testLogger())
	require.NoError(t, err)
	hv := v.(*HMACVerifier)

	valid := &models.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "u1@example.com",
		Role:  "lecturer",
	}

	tests := []struct {
		name    string
		token   func() string
		wantErr bool
	}{
		{
			name: "valid token",
			token: func() string {
				s, _ := hv.Sign(valid)
				return s
			},
		},
		{
			name: "expired token",
			token: func() string {
				c := *valid
				c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
				s, _ := hv.Sign(&c)
				return s
			},
			wantErr: true,
		},
		{
			name: "missing subject",
			token: func() string {
				c := *valid
				c.Subject = ""
				s, _ := hv.Sign(&c)
				return s
			},
			wantErr: true,
		},
		{
			name: "wrong secret",
			token: func() string {
				s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, valid).SignedString([]byte("other"))
				return s
			},
			wantErr: true,
		},
		{
			name:    "garbage",
			token:   func() string { return "not-a-jwt" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := v.VerifyToken(tt.token())
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.Actor{AccountID: "u1", Email: "u1@example.com", Role: "lecturer"}, claims.Actor())
		})
	}
}

func TestNewHMACVerifier_EmptySecret(t *testing.T) {
	_, err := NewHMACVerifier("", testLogger())
	assert.Error(t, err)
}
