package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/jrsteele09/go-car-rental/internal/errors"
	"github.com/jrsteele09/go-car-rental/token"
	"github.com/jrsteele09/go-car-rental/users"
	"golang.org/x/oauth2"
)

var _ oauth2.TokenSource = (*Session)(nil)

// Session is the authenticated user's token pair plus cached profile.
// It keeps an in-memory copy of the three persisted values and writes every
// change through to its Store. Readers always receive copies.
type Session struct {
	store Store

	mu      sync.RWMutex
	access  string
	refresh string
	user    *users.Profile
	onReset []func()
}

// NewSession creates an empty session backed by store. Call Load to pick up
// credentials persisted by an earlier run.
func NewSession(store Store) *Session {
	return &Session{store: store}
}

// Load reads the persisted credentials into memory. Absent keys leave the
// matching field empty. An unreadable profile is dropped rather than failing
// the load; it is refetched from /me/ on demand.
func (s *Session) Load(ctx context.Context) error {
	access, err := s.get(ctx, KeyAccess)
	if err != nil {
		return err
	}
	refresh, err := s.get(ctx, KeyRefresh)
	if err != nil {
		return err
	}
	rawUser, err := s.get(ctx, KeyUser)
	if err != nil {
		return err
	}

	var user *users.Profile
	if rawUser != "" {
		var p users.Profile
		if json.Unmarshal([]byte(rawUser), &p) == nil {
			user = &p
		}
	}

	s.mu.Lock()
	s.access, s.refresh, s.user = access, refresh, user
	s.mu.Unlock()
	return nil
}

func (s *Session) get(ctx context.Context, key string) (string, error) {
	v, err := s.store.Get(ctx, key)
	if errors.Is(err, errors.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to load %s", key)
	}
	return v, nil
}

// OnReset registers fn to run whenever the signed-in identity changes, after
// Begin succeeds and after Clear. Caches of per-user data hook in here.
func (s *Session) OnReset(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.onReset = append(s.onReset, fn)
	s.mu.Unlock()
}

func (s *Session) reset() {
	s.mu.RLock()
	hooks := slices.Clone(s.onReset)
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

// Begin starts a new session after a successful login or registration. The
// store is written first; if that fails the previous session stays in place.
func (s *Session) Begin(ctx context.Context, access, refresh string, user *users.Profile) error {
	values := map[string]string{
		KeyAccess:  access,
		KeyRefresh: refresh,
	}
	if user != nil {
		raw, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}
		values[KeyUser] = string(raw)
	}

	if err := s.store.SetMany(ctx, values); err != nil {
		return errors.Wrapf(err, "failed to persist session")
	}
	if user == nil {
		if err := s.store.Delete(ctx, KeyUser); err != nil {
			return errors.Wrapf(err, "failed to persist session")
		}
	}

	s.mu.Lock()
	s.access, s.refresh, s.user = access, refresh, cloneProfile(user)
	s.mu.Unlock()

	s.reset()
	return nil
}

// UpdateAccessToken replaces the access token after a successful refresh.
// The previous access token is discarded.
func (s *Session) UpdateAccessToken(ctx context.Context, access string) error {
	s.mu.Lock()
	s.access = access
	s.mu.Unlock()

	if err := s.store.Set(ctx, KeyAccess, access); err != nil {
		return errors.Wrapf(err, "failed to persist access token")
	}
	return nil
}

// SetUser replaces the cached profile
func (s *Session) SetUser(ctx context.Context, user *users.Profile) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	s.mu.Lock()
	s.user = cloneProfile(user)
	s.mu.Unlock()

	return s.store.Set(ctx, KeyUser, string(raw))
}

// Clear destroys the session: memory first, then all three persisted keys
// in a single store write.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.access, s.refresh, s.user = "", "", nil
	s.mu.Unlock()
	s.reset()

	if err := s.store.Delete(ctx, AllKeys...); err != nil {
		return errors.Wrapf(err, "failed to clear session")
	}
	return nil
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// User returns a copy of the cached profile, or nil
func (s *Session) User() *users.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProfile(s.user)
}

// Exists reports whether there is an access token to send
func (s *Session) Exists() bool {
	return s.AccessToken() != ""
}

// Token implements oauth2.TokenSource. Expiry is read from the access
// token's exp claim when it is a JWT; otherwise it is left zero.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	access, refresh := s.access, s.refresh
	s.mu.RUnlock()

	if access == "" {
		return nil, errors.ErrNoSession
	}

	tok := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
	}
	if claims, err := token.Inspect(access); err == nil {
		tok.Expiry = claims.ExpiresAt
	}
	return tok, nil
}

func cloneProfile(p *users.Profile) *users.Profile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
