package apiclient

import "context"

// DefaultPublicViews are the views from which a sign-out is not announced
var DefaultPublicViews = []string{"/", "/login", "/register"}

// Navigator is the presentation boundary the client reports to when a
// session ends because it could not be refreshed.
type Navigator interface {
	// CurrentView names the view the user is on, e.g. "/bookings"
	CurrentView() string

	// SignedOut is called after the session has been cleared
	SignedOut(ctx context.Context)
}
