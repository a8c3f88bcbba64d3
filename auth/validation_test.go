package auth_test

import (
	"testing"

	"github.com/jrsteele09/go-car-rental/apiclient"
	"github.com/jrsteele09/go-car-rental/auth"
	"github.com/jrsteele09/go-car-rental/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestChangePasswordRequest_Validate(t *testing.T) {
	tests := []struct {
		name  string
		req   auth.ChangePasswordRequest
		field string
	}{
		{"valid", auth.ChangePasswordRequest{OldPassword: "Old12345", NewPassword: "New12345", NewPasswordConfirm: "New12345"}, ""},
		{"missing old", auth.ChangePasswordRequest{NewPassword: "New12345", NewPasswordConfirm: "New12345"}, "old_password"},
		{"unchanged", auth.ChangePasswordRequest{OldPassword: "Same1234", NewPassword: "Same1234", NewPasswordConfirm: "Same1234"}, ""},
		{"weak", auth.ChangePasswordRequest{OldPassword: "Old12345", NewPassword: "short", NewPasswordConfirm: "short"}, ""},
		{"mismatch", auth.ChangePasswordRequest{OldPassword: "Old12345", NewPassword: "New12345", NewPasswordConfirm: "New54321"}, "new_password"},
		{"missing confirm", auth.ChangePasswordRequest{OldPassword: "Old12345", NewPassword: "New12345"}, "new_password_confirm"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.field == "" {
				require.NoError(t, err)
				return
			}
			var verr *apiclient.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestRegisterRequest_ValidateMismatch(t *testing.T) {
	req := validRegistration()
	req.PasswordConfirm = "Other123!"
	err := req.Validate()
	require.ErrorIs(t, err, auth.UserPasswordsDontMatchErr)
	require.ErrorIs(t, err, errors.ErrInvalidRequest)
	require.Equal(t, "password: Password fields didn't match.", apiclient.ErrorMessage(err))

	req.Password, req.PasswordConfirm = "weakpass", "weakpass"
	require.NoError(t, req.Validate())
}

func TestRegisterRequest_ValidateMessage(t *testing.T) {
	req := validRegistration()
	req.Email = ""
	require.Equal(t, "email: This field is required.", apiclient.ErrorMessage(req.Validate()))
}
