package server

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/karkeeg/productforge/internal/db"
	"github.com/karkeeg/productforge/internal/stream"
)

// Store is the persistence surface the handlers need. *db.DB satisfies it;
// tests substitute fakes.
type Store interface {
	CreateExtraction(ctx context.Context, userID uuid.UUID, input db.CreateExtractionInput) (*db.Extraction, error)
	GetExtraction(ctx context.Context, id, userID uuid.UUID) (*db.Extraction, error)
	ListExtractions(ctx context.Context, userID uuid.UUID, filters db.ExtractionFilters) ([]db.Extraction, error)
	UpdateStepPointer(ctx context.Context, id, userID uuid.UUID, step int, data json.RawMessage) (*db.ExtractionRef, error)

	GetProgress(ctx context.Context, userID uuid.UUID) (*db.Progress, error)
	TouchProgress(ctx context.Context, userID uuid.UUID, targetStep int) error
	CompleteOnboarding(ctx context.Context, userID uuid.UUID) error

	ListTemplates(ctx context.Context, filters db.TemplateFilters) ([]db.Template, error)
	IncrementTemplateUsage(ctx context.Context, id uuid.UUID) (int, error)
}

// StepRunner executes one pipeline step, streaming events to the sink.
type StepRunner interface {
	RunStep(ctx context.Context, userID, extractionID uuid.UUID, stepNumber int, sink stream.Sink) error
}
