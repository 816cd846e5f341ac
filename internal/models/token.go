package models

import (
	"time"
)

// TokenResponse is returned by login, register and refresh.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token"`
	UserID       string    `json:"user_id"`
	TenantID     string    `json:"tenant_id"`
	Role         string    `json:"role"`
	TokenID      string    `json:"token_id"`
	IssuedAt     time.Time `json:"issued_at"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	CompanyName     string  `json:"company_name" validate:"required,min=2,max=160"`
	CompanyDocument *string `json:"company_document" validate:"omitempty,cnpj"`
	CompanyPhone    *string `json:"company_phone" validate:"omitempty,max=30"`
	Name            string  `json:"name" validate:"required,min=2,max=120"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=8,max=72"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// AuthResponse pairs the tokens with the profile of the signed-in user.
type AuthResponse struct {
	*TokenResponse
	User   *User   `json:"user"`
	Tenant *Tenant `json:"tenant,omitempty"`
}
