package token

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-car-rental/internal/errors"
)

// Type is the token_type claim the API puts in every JWT it issues
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims are the claims the rental API issues in its access and refresh tokens.
type Claims struct {
	TokenType Type
	UserID    int
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is past its exp claim. Tokens without an
// exp claim never expire.
func (c *Claims) Expired() bool {
	if c == nil || c.ExpiresAt.IsZero() {
		return false
	}
	return !NowTimeFunc().Before(c.ExpiresAt)
}

// Inspect decodes the claims of raw WITHOUT verifying its signature. The
// client holds no verification key; the result is only fit for display and
// for estimating the expiry of the bearer credential.
func Inspect(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.ErrInvalidToken
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "parse unverified: %v", err)
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, fmt.Errorf("error extracting claims: %w", errors.ErrInvalidToken)
	}
	return claimsFromMap(mapClaims), nil
}

func claimsFromMap(m jwtlib.MapClaims) *Claims {
	c := &Claims{}
	if v, ok := m["token_type"].(string); ok {
		c.TokenType = Type(v)
	}
	if v, ok := m["jti"].(string); ok {
		c.JTI = v
	}
	switch v := m["user_id"].(type) {
	case float64:
		c.UserID = int(v)
	case string:
		c.UserID, _ = strconv.Atoi(v)
	}
	if exp, err := m.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if iat, err := m.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	return c
}
