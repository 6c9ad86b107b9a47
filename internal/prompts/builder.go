package prompts

import (
	"encoding/json"
	"strconv"

	"github.com/karkeeg/productforge/internal/steps"
)

// promptFile is the embedded template file holding all pipeline prompts.
const promptFile = "extraction.json"

// corePrice is the fixed price substituted into the sales-page prompt.
const corePrice = "$37"

// Snapshot is the subset of an extraction the prompt builder reads.
// Keeping it local keeps the builder free of persistence imports.
type Snapshot struct {
	Title          string
	TargetAudience string
	Transformation string
	ProductIdea    string
	SixPillars     json.RawMessage
}

// Build renders the prompt for a pipeline step from the current extraction
// snapshot. Deterministic: the same inputs always produce the same prompt.
func Build(def steps.Definition, snap Snapshot) (string, error) {
	template, err := Get(promptFile, def.PromptKey)
	if err != nil {
		return "", err
	}

	var data map[string]string
	switch def.PromptKey {
	case "product_extraction":
		data = map[string]string{
			"ProductIdea":    snap.ProductIdea,
			"TargetAudience": snap.TargetAudience,
			"Transformation": snap.Transformation,
		}
	case "pillar_expansion":
		data = map[string]string{
			"PillarTitle":    "All Pillars",
			"CurrentContent": pillarsJSON(snap.SixPillars),
			"TargetAudience": snap.TargetAudience,
		}
	case "sales_page_generation":
		data = map[string]string{
			"ProductTitle":   snap.Title,
			"Price":          corePrice,
			"TargetAudience": snap.TargetAudience,
			"Transformation": snap.Transformation,
			"Pillars":        pillarsJSON(snap.SixPillars),
		}
	default:
		data = map[string]string{
			"Step":           strconv.Itoa(def.Number),
			"Title":          snap.Title,
			"TargetAudience": snap.TargetAudience,
			"Transformation": snap.Transformation,
		}
	}

	return Format(template, data), nil
}

// pillarsJSON serializes the pillars array from the six-pillar slot,
// defaulting to an empty array when the slot is missing or malformed.
func pillarsJSON(sixPillars json.RawMessage) string {
	if len(sixPillars) == 0 {
		return "[]"
	}
	var slot struct {
		Pillars json.RawMessage `json:"pillars"`
	}
	if err := json.Unmarshal(sixPillars, &slot); err != nil || len(slot.Pillars) == 0 {
		return "[]"
	}
	return string(slot.Pillars)
}
