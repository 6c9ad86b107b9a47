// Package steps defines the static catalog of the 8-stage extraction pipeline.
// The catalog is the single source of truth for per-step prompt selection,
// output interpretation, and persistence routing.
package steps

// Slot identifies which field of an extraction a step's result is written to.
type Slot string

// Persistence slots on the extraction record.
const (
	SlotSixPillars  Slot = "six_pillars"
	SlotMethodology Slot = "methodology"
	SlotResources   Slot = "resources"
	SlotSalesPage   Slot = "sales_page"
)

// Pipeline boundaries.
const (
	FirstStep = 1
	FinalStep = 8
)

// Definition describes one stage of the extraction pipeline.
type Definition struct {
	Number           int    `json:"number"`
	Label            string `json:"label"`
	Description      string `json:"description"`
	PromptKey        string `json:"-"`
	ExpectsJSON      bool   `json:"expects_json"`
	Slot             Slot   `json:"-"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

// Catalog lists all pipeline stages in order.
var Catalog = []Definition{
	{
		Number:           1,
		Label:            "Product Extraction",
		Description:      "Generate the 6-pillar product structure",
		PromptKey:        "product_extraction",
		ExpectsJSON:      true,
		Slot:             SlotSixPillars,
		EstimatedMinutes: 15,
	},
	{
		Number:           2,
		Label:            "Content Expansion",
		Description:      "Develop detailed content for each pillar",
		PromptKey:        "pillar_expansion",
		Slot:             SlotResources,
		EstimatedMinutes: 10,
	},
	{
		Number:           3,
		Label:            "PERC Method Integration",
		Description:      "Apply the Plan, Eliminate, Replace, Create framework",
		PromptKey:        "step_continuation",
		Slot:             SlotMethodology,
		EstimatedMinutes: 8,
	},
	{
		Number:           4,
		Label:            "Resource Creation",
		Description:      "Generate templates, checklists, and supporting materials",
		PromptKey:        "step_continuation",
		Slot:             SlotResources,
		EstimatedMinutes: 12,
	},
	{
		Number:           5,
		Label:            "Sales Page Generation",
		Description:      "Create converting sales copy and marketing materials",
		PromptKey:        "sales_page_generation",
		ExpectsJSON:      true,
		Slot:             SlotSalesPage,
		EstimatedMinutes: 10,
	},
	{
		Number:           6,
		Label:            "Bonus Materials",
		Description:      "Add value-boosting complementary bonuses",
		PromptKey:        "step_continuation",
		Slot:             SlotResources,
		EstimatedMinutes: 8,
	},
	{
		Number:           7,
		Label:            "Pricing Strategy",
		Description:      "Optimize pricing and upsell structure",
		PromptKey:        "step_continuation",
		Slot:             SlotResources,
		EstimatedMinutes: 5,
	},
	{
		Number:           8,
		Label:            "Final Package",
		Description:      "Complete product ready for launch",
		PromptKey:        "step_continuation",
		Slot:             SlotResources,
		EstimatedMinutes: 2,
	},
}

// Get returns the definition for a step number, or false if out of range.
func Get(number int) (Definition, bool) {
	if number < FirstStep || number > FinalStep {
		return Definition{}, false
	}
	return Catalog[number-1], true
}
