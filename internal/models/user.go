package models

import "time"

// User represents a row in the PostgreSQL users table.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // bcrypt hash, never serialize
	CreatedAt time.Time `json:"created_at"`
}

// SignupForm is the form body for POST /auth/signup.
type SignupForm struct {
	Username        string `form:"username"         validate:"required,min=3,max=30"`
	Email           string `form:"email"            validate:"required,email,max=100"`
	Password        string `form:"password"         validate:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginForm is the form body for POST /auth/login. Identifier is either an
// email address or a username.
type LoginForm struct {
	Identifier string `form:"identifier" validate:"required"`
	Password   string `form:"password"   validate:"required"`
}
