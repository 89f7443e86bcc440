package model

import "time"

// Account mirrors the 'accounts' table.  Accounts own lessons through
// permission grants and authenticate with email + bcrypt password hash.
type Account struct {
	ID           uint64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
