package types

import "encoding/json"

// CreateExtractionRequest starts a new product extraction session.
// Timeframe and expertise seed the six-pillar slot and may be empty.
type CreateExtractionRequest struct {
	Title          string `json:"title" validate:"required,min=1"`
	Niche          string `json:"niche" validate:"required,min=1"`
	TargetAudience string `json:"targetAudience" validate:"required,min=1"`
	Transformation string `json:"transformation" validate:"required,min=1"`
	Timeframe      string `json:"timeframe,omitempty"`
	Expertise      string `json:"expertise,omitempty"`
}

// RunStepRequest selects the pipeline step to execute. The step number is
// range-checked against the catalog by the handler, not the validator.
type RunStepRequest struct {
	Step int `json:"step"`
}

// AdvanceRequest moves the step pointer directly, optionally carrying
// client-edited content for the step's slot.
type AdvanceRequest struct {
	Step int             `json:"step"`
	Data json.RawMessage `json:"data,omitempty"`
}
