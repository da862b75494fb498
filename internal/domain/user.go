package domain

import "time"

// User is the domain model for a registered member.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
