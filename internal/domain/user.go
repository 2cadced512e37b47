package domain

import "time"

// Role is the authorization role carried by a user and its access tokens.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// User is the stored account record backing login.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credential projects the fields authentication needs from a user.
func (u *User) Credential() Credential {
	return Credential{UserID: u.ID, Role: u.Role, PasswordHash: u.PasswordHash}
}
