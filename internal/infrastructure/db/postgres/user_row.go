package postgres

import "time"

type userRow struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IsVerified   bool
	IsActive     bool
	IsAdmin      bool
	CreatedAt    time.Time
}
