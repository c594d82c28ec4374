// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/tressure/backend/internal/model"
)

// SubmitRequest represents the request body for POST /submit.
type SubmitRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserResponse represents a submission in API responses.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}

// SubmitResponse represents the result of a submission.
type SubmitResponse struct {
	IsFirst  bool  `json:"isFirst"`
	Position int64 `json:"position"`
}

// ResetResponse is returned after the table has been recreated.
type ResetResponse struct {
	Message string `json:"message"`
	ResetID string `json:"reset_id"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Timestamp: user.Timestamp.UTC(),
	}
}

// ToUserListResponse converts users to DTOs. Never returns nil so an empty
// table encodes as [].
func ToUserListResponse(users []*model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, ToUserResponse(user))
	}
	return out
}

// ToSubmitResponse converts a SubmitResult to SubmitResponse DTO.
func ToSubmitResponse(result *model.SubmitResult) SubmitResponse {
	return SubmitResponse{
		IsFirst:  result.IsFirst,
		Position: result.Position,
	}
}
