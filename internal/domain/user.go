package domain

import "time"

// User is the domain model for every account on the service: clients filing
// repair requests as well as workshop staff.
type User struct {
	ID           string
	FullName     string
	Phone        string
	Login        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
