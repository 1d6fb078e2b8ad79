package models

// Role is the access level of a user
type Role int

// Role constants
const (
	RoleUser  Role = 1
	RoleAdmin Role = 2
)

// User represents a registered learner
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Never serialize password hash
	Role         Role   `json:"role"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request; Login accepts email or username
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// AuthResponse represents a successful authentication
type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}
