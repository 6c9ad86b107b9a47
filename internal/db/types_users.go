package db

import (
	"time"

	"github.com/google/uuid"
)

// User is an account record. PasswordHash never leaves this package's
// callers unredacted; API responses use the server package's user type.
type User struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"-"`
	BusinessType        string    `json:"business_type"`
	Experience          string    `json:"experience"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
