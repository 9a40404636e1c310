package identity

import "time"

// User represents a registered account holder.
type User struct {
	ID           string
	Email        string
	Name         string
	Phone        string
	Address      string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Credentials carries a signup or login attempt.
type Credentials struct {
	Email    string
	Password string
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	Name    string
	Phone   string
	Address string
}
