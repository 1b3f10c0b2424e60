// Package dto defines data transfer objects for the auth feature's HTTP transport layer.
package dto

// RegisterReq is the body of POST /auth/register.
// Email and password policy is enforced by the identity provider, not here.
type RegisterReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Nickname string `json:"nickname" binding:"required"`
}

// RegisterResp is returned after a successful registration.
type RegisterResp struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}
