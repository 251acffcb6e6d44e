// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/usersvc/usersvc/internal/model"
)

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// Envelope wraps every JSON response of the user API.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// CreateUserRequest represents the request body for creating a user.
// Fields are pointers so a missing key can be told apart from a present one.
type CreateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserListResponse is the data payload of GET /users.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

// Success builds a success envelope.
func Success(message string, data any) Envelope {
	return Envelope{Status: StatusSuccess, Message: message, Data: data}
}

// Fail builds a failure envelope.
func Fail(message string) Envelope {
	return Envelope{Status: StatusFail, Message: message}
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// ToUserListResponse converts users to the list payload, preserving order.
func ToUserListResponse(users []*model.User) UserListResponse {
	items := make([]UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, ToUserResponse(u))
	}
	return UserListResponse{Users: items}
}
