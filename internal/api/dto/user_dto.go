package dto

import (
	"time"

	"github.com/climatecare/repairdesk/internal/domain"
)

// CreateUserRequest payload.
type CreateUserRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Login    string `json:"login"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserResponse describes an account. Password material never leaves the
// service.
type UserResponse struct {
	ID        string      `json:"id"`
	FullName  string      `json:"full_name"`
	Phone     string      `json:"phone,omitempty"`
	Login     string      `json:"login"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}
