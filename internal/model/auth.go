package model

// User is the authenticated account returned by the backend
type User struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Email     string `json:"email" yaml:"email"`
	Role      string `json:"role" yaml:"role"` // "admin", "viewer", "user"
	Status    string `json:"status,omitempty" yaml:"status,omitempty"`
	LastLogin string `json:"last_login,omitempty" yaml:"last_login,omitempty"`
}

// IsAdmin reports whether the user may run admin-only flows such as imports
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == "admin"
}

// LoginResponse is the response of POST /auth/login
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// VerifyResponse is the response of GET /auth/verify
type VerifyResponse struct {
	Valid bool  `json:"valid"`
	User  *User `json:"user,omitempty"`
}
