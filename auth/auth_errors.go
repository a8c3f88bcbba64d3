package auth

import "errors"

var (
	ClientRequiredErr         = errors.New("client is required")
	SessionRequiredErr        = errors.New("session is required")
	UserPasswordsDontMatchErr = errors.New("user passwords not matched")
	NotSignedInErr            = errors.New("not signed in")
)
