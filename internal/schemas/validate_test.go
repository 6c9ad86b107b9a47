package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karkeeg/productforge/internal/steps"
)

func TestCheckSixPillarsValid(t *testing.T) {
	doc := []byte(`{"timeframe":"60","pillars":[{"title":"One","quickWin":"do it"}]}`)
	violations, err := Check(steps.SlotSixPillars, doc)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestCheckSixPillarsMissingPillars(t *testing.T) {
	violations, err := Check(steps.SlotSixPillars, []byte(`{"timeframe":"60"}`))
	require.NoError(t, err)
	assert.NotEmpty(t, violations)
}

func TestCheckSalesPageValid(t *testing.T) {
	doc := []byte(`{"headline":"Get it done","faqs":[{"question":"q","answer":"a"}]}`)
	violations, err := Check(steps.SlotSalesPage, doc)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestCheckFallbackWrappedResultIsFlagged(t *testing.T) {
	// The {"content": raw} fallback does not match the structured schema;
	// callers log this but persist anyway.
	violations, err := Check(steps.SlotSixPillars, []byte(`{"content":"freeform text"}`))
	require.NoError(t, err)
	assert.NotEmpty(t, violations)
}

func TestCheckUnregisteredSlotsAlwaysPass(t *testing.T) {
	violations, err := Check(steps.SlotResources, []byte(`{"anything":"goes"}`))
	require.NoError(t, err)
	assert.Empty(t, violations)

	violations, err = Check(steps.SlotMethodology, []byte(`"even a bare string"`))
	require.NoError(t, err)
	assert.Empty(t, violations)
}
