package dto

import "moderation/internal/domain"

type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username}
}
