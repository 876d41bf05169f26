package model

import (
	"regexp"
	"time"
)

// Roles a user account can hold. Publishers manage bootcamps and
// courses they own; admins bypass ownership checks entirely.
const (
	RoleUser      = "user"
	RolePublisher = "publisher"
	RoleAdmin     = "admin"
)

var emailRe = regexp.MustCompile(`^[\w.+-]+@[\w-]+(\.[\w-]+)+$`)

// User mirrors the `users` table. The password hash is never
// serialized.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity is the authenticated principal resolved by the auth guard.
// It is built fresh per request and never outlives it.
type Identity struct {
	ID   uint64
	Role string
}

// IsAdmin reports whether the identity bypasses ownership checks.
func (i *Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// Validate aggregates all schema violations for a user payload. The
// plain password is checked by the caller before hashing.
func (u *User) Validate() []string {
	var v []string
	if u.Name == "" {
		v = append(v, "Please add a name")
	}
	if u.Email == "" || !emailRe.MatchString(u.Email) {
		v = append(v, "Please add a valid email")
	}
	switch u.Role {
	case RoleUser, RolePublisher, RoleAdmin:
	default:
		v = append(v, "Role must be one of user, publisher or admin")
	}
	return v
}
