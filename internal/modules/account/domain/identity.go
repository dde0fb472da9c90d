package domain

import (
	"fmt"
	"strings"
)

// GuestUserID must match the paths module's local-partition sentinel;
// both sides treat it as "never talk to the remote service".
const GuestUserID = "guest"

// Identity is the signed-in user plus the bearer token that proves it.
// The zero value is nobody; Guest() is the explicit anonymous identity.
type Identity struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Token  string `json:"token,omitempty"`
}

func Guest() Identity {
	return Identity{UserID: GuestUserID}
}

func (i Identity) IsGuest() bool {
	return i.UserID == GuestUserID
}

func (i Identity) IsZero() bool {
	return i.UserID == ""
}

// ValidateLogin checks the credential pair before it goes on the wire.
func ValidateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("email is required")
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// ValidateRegistration checks a sign-up form before it goes on the wire.
func ValidateRegistration(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if err := ValidateLogin(email, password); err != nil {
		return err
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}
