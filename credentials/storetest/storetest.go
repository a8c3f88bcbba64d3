// Package storetest holds the behaviour every credentials.Store backend must share.
package storetest

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-car-rental/credentials"
	"github.com/jrsteele09/go-car-rental/internal/errors"
	"github.com/stretchr/testify/require"
)

// Run exercises a fresh store returned by newStore
func Run(t *testing.T, newStore func(t *testing.T) credentials.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, credentials.KeyAccess)
		require.ErrorIs(t, err, errors.ErrKeyNotFound)
	})

	t.Run("set and get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, credentials.KeyAccess, "tok-1"))
		require.NoError(t, s.Set(ctx, credentials.KeyAccess, "tok-2"))

		v, err := s.Get(ctx, credentials.KeyAccess)
		require.NoError(t, err)
		require.Equal(t, "tok-2", v)
	})

	t.Run("set many and delete all", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SetMany(ctx, map[string]string{
			credentials.KeyAccess:  "a",
			credentials.KeyRefresh: "r",
			credentials.KeyUser:    `{"username":"jdoe","role":"customer"}`,
		}))

		for _, k := range credentials.AllKeys {
			_, err := s.Get(ctx, k)
			require.NoError(t, err, k)
		}

		require.NoError(t, s.Delete(ctx, credentials.AllKeys...))
		for _, k := range credentials.AllKeys {
			_, err := s.Get(ctx, k)
			require.ErrorIs(t, err, errors.ErrKeyNotFound, k)
		}
	})

	t.Run("delete missing keys", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Delete(ctx, credentials.AllKeys...))
	})

	t.Run("delete keeps other keys", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SetMany(ctx, map[string]string{"access": "a", "theme": "dark"}))
		require.NoError(t, s.Delete(ctx, "access"))

		v, err := s.Get(ctx, "theme")
		require.NoError(t, err)
		require.Equal(t, "dark", v)
	})
}
