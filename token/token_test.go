package token_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-car-rental/internal/errors"
	"github.com/jrsteele09/go-car-rental/token"
	"github.com/stretchr/testify/require"
)

func TestIssuer_IssueAndVerify(t *testing.T) {
	issuer := token.NewIssuer("secret", time.Minute, time.Hour)

	access, refresh, err := issuer.IssuePair(42)
	require.NoError(t, err)
	require.NotEqual(t, access, refresh)

	claims, err := issuer.Verify(access, token.TypeAccess)
	require.NoError(t, err)
	require.Equal(t, 42, claims.UserID)
	require.Equal(t, token.TypeAccess, claims.TokenType)
	require.NotEmpty(t, claims.JTI)

	_, err = issuer.Verify(refresh, token.TypeAccess)
	require.ErrorIs(t, err, errors.ErrInvalidToken)

	_, err = token.NewIssuer("other", time.Minute, time.Hour).Verify(access, token.TypeAccess)
	require.ErrorIs(t, err, errors.ErrInvalidToken)
}

func TestIssuer_Expired(t *testing.T) {
	now := time.Now()
	token.NowTimeFunc = func() time.Time { return now }
	defer func() { token.NowTimeFunc = time.Now }()

	issuer := token.NewIssuer("secret", time.Minute, time.Hour)
	access, err := issuer.Issue(7, token.TypeAccess)
	require.NoError(t, err)

	token.NowTimeFunc = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = issuer.Verify(access, token.TypeAccess)
	require.ErrorIs(t, err, errors.ErrTokenExpired)

	claims, err := token.Inspect(access)
	require.NoError(t, err)
	require.True(t, claims.Expired())
}

func TestInspect(t *testing.T) {
	issuer := token.NewIssuer("secret", time.Hour, time.Hour)
	access, err := issuer.Issue(9, token.TypeAccess)
	require.NoError(t, err)

	claims, err := token.Inspect(access)
	require.NoError(t, err)
	require.Equal(t, 9, claims.UserID)
	require.False(t, claims.Expired())
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)

	_, err = token.Inspect("")
	require.ErrorIs(t, err, errors.ErrInvalidToken)

	_, err = token.Inspect("not-a-jwt")
	require.ErrorIs(t, err, errors.ErrInvalidToken)
}
