package access

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
)

func TestParseBearer_NoToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	claims, err := ParseBearer(r, nil)
	assert.NoError(t, err)
	assert.False(t, claims.IsRoot)
	assert.Empty(t, claims.Roles)
}

func TestParseBearer_CookieFallback(t *testing.T) {
	secret := []byte("test-secret")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Roles: []string{"admin"}, IsRoot: true})
	signed, err := token.SignedString(secret)
	assert.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "collectiond-jwt", Value: signed})

	claims, err := ParseBearer(r, func(*jwt.Token) (interface{}, error) { return secret, nil })
	assert.NoError(t, err)
	assert.True(t, claims.IsRoot)
	assert.True(t, claims.HasRole("admin"))
}

func TestParseBearer_BearerHeaderInvalidSignature(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{IsRoot: true})
	signed, err := token.SignedString([]byte("secret-a"))
	assert.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+signed)

	_, err = ParseBearer(r, func(*jwt.Token) (interface{}, error) { return []byte("secret-b"), nil })
	assert.Error(t, err)
}

func TestContextClaimsRoundtrip(t *testing.T) {
	ctx := ContextWithClaims(httptest.NewRequest(http.MethodGet, "/", nil).Context(), Claims{Roles: []string{"viewer"}})
	got := ClaimsFromContext(ctx)
	assert.True(t, got.HasRole("viewer"))
	assert.False(t, got.HasRole("admin"))
}
