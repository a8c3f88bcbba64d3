package auth

import "github.com/jrsteele09/go-car-rental/users"

// Credentials is the body of POST /login/
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /register/
type RegisterRequest struct {
	Username        string         `json:"username" validate:"required,max=150"`
	Email           string         `json:"email" validate:"required,email"`
	Password        string         `json:"password" validate:"required"`
	PasswordConfirm string         `json:"password_confirm" validate:"required"`
	FirstName       string         `json:"first_name,omitempty" validate:"max=150"`
	LastName        string         `json:"last_name,omitempty" validate:"max=150"`
	Phone           string         `json:"phone,omitempty" validate:"max=20"`
	Role            users.RoleType `json:"role" validate:"required,oneof=customer fleet"`
}

// AuthResponse is returned by login and registration
type AuthResponse struct {
	Access  string         `json:"access"`
	Refresh string         `json:"refresh"`
	User    *users.Profile `json:"user"`
	Message string         `json:"message,omitempty"`
}

// ProfileUpdate is a partial update of the signed-in user. Nil fields are
// left unchanged.
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=150"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

// ChangePasswordRequest is the body of POST /change-password/
type ChangePasswordRequest struct {
	OldPassword        string `json:"old_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required"`
}

// MessageResponse is the {"message": ...} acknowledgement several endpoints send
type MessageResponse struct {
	Message string `json:"message"`
}
