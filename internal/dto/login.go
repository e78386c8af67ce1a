package dto

import "time"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is what the auth service hands back to the transport; the token
// itself travels in a cookie and never in a response body.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
}
