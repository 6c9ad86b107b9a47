package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Extraction is one user's in-progress product-creation session. The four
// slot fields hold per-stage outputs; they stay nil until their stage runs.
type Extraction struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	Title          string          `json:"title"`
	Niche          string          `json:"niche"`
	TargetAudience string          `json:"target_audience"`
	Transformation string          `json:"transformation"`
	ProductIdea    string          `json:"product_idea"`
	SixPillars     json.RawMessage `json:"six_pillars,omitempty"`
	Methodology    json.RawMessage `json:"methodology,omitempty"`
	Resources      json.RawMessage `json:"resources,omitempty"`
	SalesPage      json.RawMessage `json:"sales_page,omitempty"`
	CurrentStep    int             `json:"current_step"`
	IsComplete     bool            `json:"is_complete"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CreateExtractionInput holds the immutable inputs captured at creation.
type CreateExtractionInput struct {
	Title          string
	Niche          string
	TargetAudience string
	Transformation string
	Timeframe      string
	Expertise      string
}

// ExtractionFilters holds optional filters for listing extractions.
type ExtractionFilters struct {
	Niche    string
	Complete *bool
	Limit    int
}

// ExtractionRef is the minimal projection returned by pointer updates.
type ExtractionRef struct {
	ID          uuid.UUID `json:"id"`
	CurrentStep int       `json:"currentStep"`
	IsComplete  bool      `json:"isComplete"`
}
