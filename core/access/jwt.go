// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Package access resolves the root/role facts a Context's session
// exposes to the collection orchestrator. It does not decide
// authorization itself - that remains the external verifyPermissions
// collaborator - it only turns a bearer token into the claims the
// caller needs to build a session.
package access

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// Claims is the subset of a bearer token this package cares about.
type Claims struct {
	jwt.StandardClaims
	Roles  []string `json:"roles"`
	IsRoot bool     `json:"is_root"`
}

// HasRole reports whether the claims carry the given role.
func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// KeyLookup resolves the verification key for a parsed token, keyed by
// the "kid" header. Callers typically back this with a JWKS cache.
type KeyLookup func(token *jwt.Token) (interface{}, error)

// ParseBearer extracts and verifies the bearer token carried by an
// Authorization header or a "collectiond-jwt" cookie, and returns the
// claims found in it. An empty/missing token is not an error: it
// simply yields zero-value, unauthenticated claims.
func ParseBearer(r *http.Request, lookup KeyLookup) (Claims, error) {
	var claims Claims

	tokenString := bearerToken(r)
	if tokenString == "" {
		return claims, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &claims, lookup)
	if err != nil {
		return Claims{}, err
	}
	if !token.Valid {
		return Claims{}, errors.New("invalid token")
	}
	return claims, nil
}

func bearerToken(r *http.Request) string {
	bearer := r.Header.Get("Authorization")
	if len(bearer) > 0 && strings.ToLower(bearer) != "null" {
		if len(bearer) >= 7 && strings.EqualFold(bearer[:7], "bearer ") {
			return bearer[7:]
		}
		return bearer
	}
	if cookie, err := r.Cookie("collectiond-jwt"); err == nil && cookie != nil {
		return cookie.Value
	}
	return ""
}

type contextKey string

const claimsContextKey contextKey = "collectiond-claims"

// ContextWithClaims attaches the resolved claims to the context so
// downstream Context adapters can derive isRoot/roles from it.
func ContextWithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the claims previously attached with
// ContextWithClaims, or the zero value if none were attached.
func ClaimsFromContext(ctx context.Context) Claims {
	claims, _ := ctx.Value(claimsContextKey).(Claims)
	return claims
}
