package domain

import "time"

// User is a reader. Authentication lives in front of this server, so the
// record carries identity and display data only.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewUser creates a user record.
func NewUser(id, email, displayName string, now time.Time) *User {
	return &User{
		ID:          id,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
