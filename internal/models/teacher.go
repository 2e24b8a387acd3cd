package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TeacherAccount is a credential record with the teacher's subject.
// PasswordHash is bcrypt and never serialised to clients.
type TeacherAccount struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password"`
	Subject      string    `json:"subject"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TeacherInfo is the client-safe projection of an account.
type TeacherInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Subject  string `json:"subject"`
}

// JWTClaims carries the authenticated teacher identity.
type JWTClaims struct {
	TeacherID string `json:"teacher_id"`
	Username  string `json:"username"`
	Subject   string `json:"subject"`
	jwt.RegisteredClaims
}

// LoginRequest is the credential payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest registers a new teacher account.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	Subject  string `json:"subject" validate:"required"`
}

// LoginResponse returns the issued token and account info.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   int64       `json:"expires_in"`
	IssuedAt    time.Time   `json:"issued_at"`
	Teacher     TeacherInfo `json:"teacher"`
}
