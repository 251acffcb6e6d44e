// Package model defines domain entities for the application.
package model

import "time"

// User is a registered account. Users are immutable once created.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
