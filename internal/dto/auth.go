package dto

import "github.com/yukikurage/task-tracker-api/internal/models"

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries a freshly issued token and its user.
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}
