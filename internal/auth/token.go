// Package auth — session token issuance and validation.
//
// WHY JWT?
// Sessions here are stateless: everything the server needs to identify the
// caller (account id, display name, expiry) travels inside the signed token.
// No session table, no revocation list — a leaked token stays valid until it
// expires, which is why the lifetime is capped at eight hours.
//
// JWT STRUCTURE (three base64 parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims → {"id":"...","name":"...","exp":1234567890}
//	- Signature: HMAC-SHA256(header+"."+payload, secret)
//
// The signature means nobody can alter the payload without the secret; the
// server verifies it without any database lookup.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/task-manager/internal/apperror"
)

// TokenTTL is the fixed session lifetime. Eight hours bounds the exposure
// from a leaked token — there is no server-side way to revoke one earlier.
const TokenTTL = 8 * time.Hour

// ErrInvalidToken is the single failure all token problems collapse into.
// Malformed, mis-signed, and expired tokens are deliberately
// indistinguishable to the client.
var ErrInvalidToken = apperror.Unauthorized("Invalid access token!")

// Claims is the identity payload embedded in every session token.
// ID and Name are what the login flow knows about the caller; the embedded
// RegisteredClaims carries the expiry and issued-at timestamps.
type Claims struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// TokenService signs and validates session tokens with an HMAC secret.
// The same secret is used for both operations — it comes from process
// configuration and is read-only after startup.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production:
//
//	TOKEN_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: token secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), ttl: TokenTTL}, nil
}

// Issue signs a new session token for the given account.
func (s *TokenService) Issue(accountID, name string) (string, error) {
	return s.issueWithTTL(accountID, name, s.ttl)
}

// issueWithTTL exists so expiry tests can mint an already-expired token.
func (s *TokenService) issueWithTTL(accountID, name string, ttl time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		ID:   accountID,
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a raw token, returning the embedded claims.
//
// The input may carry an optional "Bearer " prefix in any casing — that's
// what arrives in an Authorization header — and it is stripped before
// parsing. Validation is all-or-nothing: a bad signature, a missing expiry,
// an expired token, or garbage input all yield ErrInvalidToken. The payload
// of a token that failed verification is never read.
//
// ALGORITHM CONFUSION:
// jwt.WithValidMethods pins the algorithm to HS256 so a token claiming
// alg "none" (or an RSA variant) is rejected before signature checking.
func (s *TokenService) Validate(raw string) (*Claims, error) {
	raw = StripBearer(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		raw,
		claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// StripBearer removes a leading case-insensitive "bearer" scheme plus the
// whitespace after it. Input without the prefix is returned trimmed.
func StripBearer(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 6 && strings.EqualFold(raw[:6], "bearer") {
		raw = strings.TrimLeft(raw[6:], " ")
	}
	return raw
}
