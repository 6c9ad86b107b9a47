package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/karkeeg/productforge/internal/db"
)

// handleListTemplates returns the template gallery, most used first.
// Supports ?category= and ?limit= filters.
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	filters := db.TemplateFilters{Category: r.URL.Query().Get("category")}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		filters.Limit = limit
	}

	templates, err := s.store.ListTemplates(r.Context(), filters)
	if err != nil {
		log.Printf("failed to list templates: %v", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to list templates")
		return
	}
	if templates == nil {
		templates = []db.Template{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"templates": templates,
		"count":     len(templates),
	})
}

// handleUseTemplate records one use of a template.
func (s *Server) handleUseTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid template ID")
		return
	}

	count, err := s.store.IncrementTemplateUsage(r.Context(), templateID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			errorResponse(w, http.StatusNotFound, "Template not found")
			return
		}
		log.Printf("failed to record template use %s: %v", templateID, err)
		errorResponse(w, http.StatusInternalServerError, "Failed to record template use")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"usageCount": count,
	})
}
