package dto

import "chronicle_backend/internal/feature/auth/domain/entity"

// LoginReq is the body of POST /auth/login.
type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResp carries the bearer token and the caller's account.
type LoginResp struct {
	AccessToken string      `json:"accessToken"`
	User        entity.User `json:"user"`
}

// MeResp wraps the authenticated user.
type MeResp struct {
	User entity.User `json:"user"`
}
