package model

import "fmt"

// User is the identity the backend asserts for a session.
type User struct {
	ID       int64  `json:"id" yaml:"id"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
	NetID    string `json:"netid,omitempty" yaml:"netid,omitempty"`
}

// DisplayName picks the most readable identifier available.
func (u *User) DisplayName() string {
	switch {
	case u.Username != "":
		return u.Username
	case u.NetID != "":
		return u.NetID
	case u.Email != "":
		return u.Email
	}
	return fmt.Sprintf("user %d", u.ID)
}

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 8

// ValidatePassword checks that a password meets the minimum requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
