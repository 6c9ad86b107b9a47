package server

import (
	"net/http"

	"github.com/karkeeg/productforge/internal/steps"
)

// stepView is the catalog entry exposed to clients.
type stepView struct {
	Step             int    `json:"step"`
	Label            string `json:"label"`
	Description      string `json:"description"`
	ExpectsJSON      bool   `json:"expectsJson"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
}

// handleListSteps returns the static step catalog.
func (s *Server) handleListSteps(w http.ResponseWriter, _ *http.Request) {
	views := make([]stepView, 0, len(steps.Catalog))
	for _, def := range steps.Catalog {
		views = append(views, stepView{
			Step:             def.Number,
			Label:            def.Label,
			Description:      def.Description,
			ExpectsJSON:      def.ExpectsJSON,
			EstimatedMinutes: def.EstimatedMinutes,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"steps": views})
}
