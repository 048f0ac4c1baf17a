package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User holds login credentials. Scope names the ledger document the user
// works in.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         Role
	Scope        string
	Status       UserStatus
	CreatedAt    time.Time
}
