package users

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType is the storefront role of a user
type RoleType string

const (
	RoleCustomer RoleType = "customer" // Browses cars and books rentals
	RoleFleet    RoleType = "fleet"    // Fleet manager, can create/edit/delete car inventory
)

// Valid reports whether r is a role the API accepts
func (r RoleType) Valid() bool {
	return r == RoleCustomer || r == RoleFleet
}

// Profile is the user snapshot returned by /login/, /register/ and /me/.
// It is cached with the session and may go stale until the next /me/ fetch.
type Profile struct {
	ID        int      `json:"id,omitempty"`
	Username  string   `json:"username"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Role      RoleType `json:"role"`
}

// FullName joins first and last name, falling back to the username
func (p *Profile) FullName() string {
	if p == nil {
		return ""
	}
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Username
	}
	return name
}

// IsFleetManager returns true if the profile may manage car inventory
func (p *Profile) IsFleetManager() bool {
	return p != nil && p.Role == RoleFleet
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
