package storefake_test

import (
	"testing"

	"github.com/jrsteele09/go-car-rental/credentials"
	"github.com/jrsteele09/go-car-rental/credentials/storefake"
	"github.com/jrsteele09/go-car-rental/credentials/storetest"
)

func TestFakeStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) credentials.Store {
		return storefake.NewFakeStore()
	})
}
