package domain

import "time"

// AdminUser is the operator account the backend issued a token for.
type AdminUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// AdminSession is the loaded admin token and its owner.
type AdminSession struct {
	Token     string
	User      AdminUser
	ExpiresAt *time.Time
}

// Expired reports whether the token's exp claim has passed.
func (s *AdminSession) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// LoginResult is what the login endpoint hands back.
type LoginResult struct {
	Token string
	User  AdminUser
}
