package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Progress phases.
const (
	PhaseOnboarding      = "onboarding"
	PhaseExtraction      = "extraction"
	PhaseProductCreation = "product_creation"
)

// TimeIncrementMinutes is the fixed per-transition credit added to a user's
// time-in-system counter. Best-effort session modelling, not a ledger.
const TimeIncrementMinutes = 5

// Progress is the per-user aggregate tracked independently of any single
// extraction. Exactly one row per user, created lazily on first touch.
type Progress struct {
	UserID               uuid.UUID       `json:"user_id"`
	CompletedExtractions int             `json:"completed_extractions"`
	CompletedProducts    int             `json:"completed_products"`
	TimeInSystem         int             `json:"time_in_system"`
	Achievements         json.RawMessage `json:"achievements"`
	CurrentPhase         string          `json:"current_phase"`
	LastActiveAt         time.Time       `json:"last_active_at"`
}
