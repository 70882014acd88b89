package request

import "github.com/sangkips/stockbook-api/internal/domain/enum"

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateUserRequest is an admin creating a staff account
type CreateUserRequest struct {
	Name     string    `json:"name" binding:"required,min=2,max=255"`
	Email    string    `json:"email" binding:"required,email"`
	Password string    `json:"password" binding:"required,min=8"`
	Role     enum.Role `json:"role" binding:"required"`
}
