package auth

import (
	"github.com/jrsteele09/go-car-rental/apiclient"
	"github.com/jrsteele09/go-car-rental/users"
)

// Validate checks a registration before it is sent. Errors are
// *apiclient.ValidationError naming the offending field.
func (r RegisterRequest) Validate() error {
	if err := apiclient.Validate(r); err != nil {
		return err
	}
	return validateNewPassword("password", r.Password, r.PasswordConfirm)
}

func (c Credentials) Validate() error {
	return apiclient.Validate(c)
}

func (p ProfileUpdate) Validate() error {
	return apiclient.Validate(p)
}

// Validate checks required fields and the confirmation. Password rules are
// left to the API.
func (r ChangePasswordRequest) Validate() error {
	if err := apiclient.Validate(r); err != nil {
		return err
	}
	return validateNewPassword("new_password", r.NewPassword, r.NewPasswordConfirm)
}

func validateNewPassword(field, password, confirm string) error {
	if password != confirm {
		return &apiclient.ValidationError{Field: field, Message: "Password fields didn't match.", Cause: UserPasswordsDontMatchErr}
	}
	return nil
}

func checkPasswordStrength(field, password string) error {
	if err := users.ValidatePasswordStrength(password); err != nil {
		return apiclient.NewValidationError(field, err.Error())
	}
	return nil
}
