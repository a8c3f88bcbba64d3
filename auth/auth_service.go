package auth

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-car-rental/apiclient"
	"github.com/jrsteele09/go-car-rental/credentials"
	"github.com/jrsteele09/go-car-rental/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Service signs users in and out and manages the signed-in profile. It is
// the only place besides the API client that writes to the Session.
type Service struct {
	client         *apiclient.Client
	session        *credentials.Session
	logger         zerolog.Logger
	strongPassword bool
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPasswordStrength rejects weak new passwords before they are sent. By
// default the API alone decides which passwords it accepts.
func WithPasswordStrength() ServiceOption {
	return func(s *Service) {
		s.strongPassword = true
	}
}

// New creates a Service. session must be the one client authenticates with.
func New(client *apiclient.Client, session *credentials.Session, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("[auth.New] %w", ClientRequiredErr)
	}
	if session == nil {
		return nil, fmt.Errorf("[auth.New] %w", SessionRequiredErr)
	}
	s := &Service{
		client:  client,
		session: session,
		logger:  log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Register creates an account. When the API answers with a token pair the
// new user is signed in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.strongPassword {
		if err := checkPasswordStrength("password", req.Password); err != nil {
			return nil, err
		}
	}
	return s.authenticate(ctx, "/register/", req)
}

// Login signs in with username and password
func (s *Service) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return s.authenticate(ctx, "/login/", creds)
}

func (s *Service) authenticate(ctx context.Context, path string, body any) (*AuthResponse, error) {
	var resp AuthResponse
	if err := s.client.Do(ctx, apiclient.Post(path, body), &resp); err != nil {
		return nil, err
	}
	if resp.Access != "" && resp.Refresh != "" {
		if err := s.session.Begin(ctx, resp.Access, resp.Refresh, resp.User); err != nil {
			return nil, err
		}
		event := s.logger.Info()
		if resp.User != nil {
			event = event.Str("username", resp.User.Username)
		}
		event.Msg("signed in")
	}
	return &resp, nil
}

// Logout tells the API and then clears the session, even if the API call
// failed. The API error, if any, is returned.
func (s *Service) Logout(ctx context.Context) error {
	postErr := s.client.Do(ctx, apiclient.Post("/logout/", nil), nil)
	if err := s.session.Clear(ctx); err != nil {
		if postErr != nil {
			return postErr
		}
		return err
	}
	return postErr
}

// Me fetches the signed-in user's profile and refreshes the cached copy
func (s *Service) Me(ctx context.Context) (*users.Profile, error) {
	var p users.Profile
	if err := s.client.Do(ctx, apiclient.Get("/me/", nil), &p); err != nil {
		return nil, err
	}
	if err := s.cacheProfile(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile changes the fields set in u
func (s *Service) UpdateProfile(ctx context.Context, u ProfileUpdate) (*users.Profile, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	var p users.Profile
	if err := s.client.Do(ctx, apiclient.Patch("/me/", u), &p); err != nil {
		return nil, err
	}
	if err := s.cacheProfile(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) cacheProfile(ctx context.Context, p *users.Profile) error {
	// the session may have ended while the request was in flight
	if !s.session.Exists() {
		return nil
	}
	return s.session.SetUser(ctx, p)
}

func (s *Service) ChangePassword(ctx context.Context, req ChangePasswordRequest) (*MessageResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.strongPassword {
		if err := checkPasswordStrength("new_password", req.NewPassword); err != nil {
			return nil, err
		}
	}
	var resp MessageResponse
	if err := s.client.Do(ctx, apiclient.Post("/change-password/", req), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentUser returns the cached profile without a network call
func (s *Service) CurrentUser() *users.Profile {
	return s.session.User()
}

func (s *Service) AccessToken() string {
	return s.session.AccessToken()
}

func (s *Service) IsAuthenticated() bool {
	return s.session.Exists()
}

// IsFleetManager reports whether the cached profile has the fleet role
func (s *Service) IsFleetManager() bool {
	return s.session.User().IsFleetManager()
}
