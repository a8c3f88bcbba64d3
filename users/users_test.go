package users_test

import (
	"testing"

	"github.com/jrsteele09/go-car-rental/users"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{name: "valid", password: "TestPass123!@#"},
		{name: "too short", password: "Ab1", wantErr: "at least 8 characters"},
		{name: "no upper", password: "testpass123", wantErr: "uppercase"},
		{name: "no lower", password: "TESTPASS123", wantErr: "lowercase"},
		{name: "no number", password: "TestPassword", wantErr: "number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := users.ValidatePasswordStrength(tt.password)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProfile(t *testing.T) {
	p := &users.Profile{Username: "jdoe", Role: users.RoleFleet}
	require.Equal(t, "jdoe", p.FullName())
	require.True(t, p.IsFleetManager())

	p.FirstName, p.LastName = "John", "Doe"
	p.Role = users.RoleCustomer
	require.Equal(t, "John Doe", p.FullName())
	require.False(t, p.IsFleetManager())

	var nilProfile *users.Profile
	require.False(t, nilProfile.IsFleetManager())
	require.True(t, users.RoleCustomer.Valid())
	require.False(t, users.RoleType("admin").Valid())
}

func TestPasswordHash(t *testing.T) {
	hash, err := users.HashPassword("TestPass123")
	require.NoError(t, err)
	require.True(t, users.CheckPasswordHash("TestPass123", hash))
	require.False(t, users.CheckPasswordHash("wrong", hash))
}
