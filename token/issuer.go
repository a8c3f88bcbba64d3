package token

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-car-rental/internal/errors"
)

// Issuer signs and verifies HS256 token pairs shaped like the ones the rental
// API issues. The client never signs tokens; the fake API in tests does.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer creates a new HS256 issuer
func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssuePair creates an access and a refresh token for userID
func (i *Issuer) IssuePair(userID int) (access, refresh string, err error) {
	if access, err = i.Issue(userID, TypeAccess); err != nil {
		return "", "", err
	}
	if refresh, err = i.Issue(userID, TypeRefresh); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Issue creates a single token of the given type
func (i *Issuer) Issue(userID int, tokenType Type) (string, error) {
	ttl := i.accessTTL
	if tokenType == TypeRefresh {
		ttl = i.refreshTTL
	}
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"token_type": string(tokenType),
		"user_id":    userID,
		"jti":        uuid.New().String(),
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and token_type of raw
func (i *Issuer) Verify(raw string, want Type) (*Claims, error) {
	parsed, err := jwtlib.ParseWithClaims(raw, jwtlib.MapClaims{}, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwtlib.WithTimeFunc(NowTimeFunc))
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.Wrapf(errors.ErrInvalidToken, "%v", err)
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok || !parsed.Valid {
		return nil, errors.ErrInvalidToken
	}

	claims := claimsFromMap(mapClaims)
	if claims.TokenType != want {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "token_type %q", claims.TokenType)
	}
	return claims, nil
}
