package db

import (
	"time"

	"github.com/google/uuid"
)

// Template is a reusable product blueprint users can start from.
type Template struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	UsageCount  int       `json:"usageCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TemplateFilters narrows ListTemplates results.
type TemplateFilters struct {
	Category string
	Limit    int
}
