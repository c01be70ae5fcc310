package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campusdrive/internal/auth"
	"campusdrive/internal/domain/models"
	"campusdrive/internal/httputil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v, err := auth.NewHMACVerifier("s3cret", logger)
	require.NoError(t, err)

	token, err := v.(*auth.HMACVerifier).Sign(&models.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "alice@example.com",
		Role:  "lecturer",
	})
	require.NoError(t, err)

	var seen models.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = httputil.GetActor(r)
		w.WriteHeader(http.StatusTeapot)
	})
	h := AuthMiddleware(v, logger, "/health")(next)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantActor  string
	}{
		{"bearer header", "/api/folders", "Bearer " + token, http.StatusTeapot, "alice"},
		{"lowercase scheme", "/api/folders", "bearer " + token, http.StatusTeapot, "alice"},
		{"query token", "/api/ws?token=" + token, "", http.StatusTeapot, "alice"},
		{"missing", "/api/folders", "", http.StatusUnauthorized, ""},
		{"garbage", "/api/folders", "Bearer nope", http.StatusUnauthorized, ""},
		{"public path", "/health", "", http.StatusTeapot, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = models.Actor{}
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantActor, seen.AccountID)
			if tt.wantActor != "" {
				assert.Equal(t, "alice@example.com", seen.Email)
				assert.Equal(t, "lecturer", seen.Role)
			}
		})
	}
}
