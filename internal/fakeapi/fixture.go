package fakeapi

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/go-car-rental/apiclient"
	"github.com/jrsteele09/go-car-rental/credentials"
	"github.com/jrsteele09/go-car-rental/credentials/storefake"
	"github.com/jrsteele09/go-car-rental/users"
)

// Navigator records sign-outs
type Navigator struct {
	View      string
	signedOut atomic.Int32
}

func (n *Navigator) CurrentView() string         { return n.View }
func (n *Navigator) SignedOut(_ context.Context) { n.signedOut.Add(1) }

// SignedOutCount is how many times SignedOut was called
func (n *Navigator) SignedOutCount() int {
	return int(n.signedOut.Load())
}

// Fixture is a running fake plus a client wired to it
type Fixture struct {
	API       *Server
	Store     *storefake.FakeStore
	Session   *credentials.Session
	Client    *apiclient.Client
	Navigator *Navigator
}

func NewFixture(t testing.TB, opts ...apiclient.Option) *Fixture {
	t.Helper()

	api, baseURL := Start(t)
	f := &Fixture{
		API:       api,
		Store:     storefake.NewFakeStore(),
		Navigator: &Navigator{View: "/cars"},
	}
	f.Session = credentials.NewSession(f.Store)

	opts = append([]apiclient.Option{apiclient.WithNavigator(f.Navigator)}, opts...)
	client, err := apiclient.New(baseURL, f.Session, opts...)
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	f.Client = client
	return f
}

// SignIn starts a session for p without going through /login/
func (f *Fixture) SignIn(t testing.TB, p users.Profile) {
	t.Helper()

	f.API.mu.Lock()
	pair, err := f.API.issueLocked(p.ID)
	f.API.mu.Unlock()
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	if err := f.Session.Begin(context.Background(), pair["access"].(string), pair["refresh"].(string), &p); err != nil {
		t.Fatalf("begin session: %v", err)
	}
}
