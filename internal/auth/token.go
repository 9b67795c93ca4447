// ABOUTME: JWT access token issuance and verification for the OAuth token endpoint
// ABOUTME: Uses HS256 signing with the configured secret

package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// issuerName is the iss claim stamped on every access token.
const issuerName = "mcp-sonarr"

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// TokenClaims is the verified claim set of an access token. Only fields that
// signature verification vouches for are exposed.
type TokenClaims struct {
	Subject string
	Scope   string
}

// TokenIssuer creates and validates signed, stateless bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a token issuer signing with the given secret.
// Tokens expire after ttl.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue creates a new access token for the given client. When scopes is
// empty the token is granted the "full" scope. Returns the signed token and
// its lifetime in seconds.
func (i *TokenIssuer) Issue(clientID string, scopes []string) (string, int, error) {
	if len(scopes) == 0 {
		scopes = []string{"full"}
	}

	now := i.now()
	claims := jwt.MapClaims{
		"sub":   clientID,
		"iat":   now.Unix(),
		"exp":   now.Add(i.ttl).Unix(),
		"scope": strings.Join(scopes, " "),
		"iss":   issuerName,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", 0, fmt.Errorf("signing token: %w", err)
	}
	return signed, int(i.ttl.Seconds()), nil
}

// Verify validates the token signature and expiry and extracts the claims.
// Any structural or cryptographic failure yields an error; callers must not
// trust fields from tokens that fail verification.
func (i *TokenIssuer) Verify(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	scope, _ := claims["scope"].(string)

	return &TokenClaims{Subject: sub, Scope: scope}, nil
}
