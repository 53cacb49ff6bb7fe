package dto

import authdomain "mindlog-backend/internal/auth/domain"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

type TokenResponse struct {
	AccessToken string           `json:"access_token"`
	User        *authdomain.User `json:"user"`
}
