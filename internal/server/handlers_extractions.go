package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/karkeeg/productforge/internal/db"
	"github.com/karkeeg/productforge/internal/pipeline"
	"github.com/karkeeg/productforge/internal/server/middleware"
	"github.com/karkeeg/productforge/internal/steps"
	"github.com/karkeeg/productforge/internal/types"
)

// extractionRef is the compact extraction view returned by mutations.
type extractionRef struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Niche       string    `json:"niche"`
	CurrentStep int       `json:"currentStep"`
}

// handleCreateExtraction starts a new extraction session.
func (s *Server) handleCreateExtraction(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req types.CreateExtractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	ext, err := s.store.CreateExtraction(r.Context(), userID, db.CreateExtractionInput{
		Title:          req.Title,
		Niche:          req.Niche,
		TargetAudience: req.TargetAudience,
		Transformation: req.Transformation,
		Timeframe:      req.Timeframe,
		Expertise:      req.Expertise,
	})
	if err != nil {
		log.Printf("failed to create extraction for user %s: %v", userID, err)
		errorResponse(w, http.StatusInternalServerError, "Failed to create extraction")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"extraction": extractionRef{
			ID:          ext.ID,
			Title:       ext.Title,
			Niche:       ext.Niche,
			CurrentStep: ext.CurrentStep,
		},
	})
}

// handleListExtractions returns the caller's extractions, newest first.
// Supports ?niche=, ?complete= and ?limit= filters.
func (s *Server) handleListExtractions(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filters := db.ExtractionFilters{Niche: r.URL.Query().Get("niche")}
	if v := r.URL.Query().Get("complete"); v != "" {
		complete, err := strconv.ParseBool(v)
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "Invalid complete filter")
			return
		}
		filters.Complete = &complete
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		filters.Limit = limit
	}

	extractions, err := s.store.ListExtractions(r.Context(), userID, filters)
	if err != nil {
		log.Printf("failed to list extractions for user %s: %v", userID, err)
		errorResponse(w, http.StatusInternalServerError, "Failed to list extractions")
		return
	}
	if extractions == nil {
		extractions = []db.Extraction{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"extractions": extractions,
		"count":       len(extractions),
	})
}

// handleGetExtraction returns one owned extraction. Someone else's
// extraction is indistinguishable from a missing one.
func (s *Server) handleGetExtraction(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	extractionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid extraction ID")
		return
	}

	ext, err := s.store.GetExtraction(r.Context(), extractionID, userID)
	if err != nil {
		log.Printf("failed to get extraction %s: %v", extractionID, err)
		errorResponse(w, http.StatusInternalServerError, "Failed to get extraction")
		return
	}
	if ext == nil {
		errorResponse(w, http.StatusNotFound, "Extraction not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"extraction": ext})
}

// handleRunStep executes one pipeline step, streaming progress frames to the
// client. Failures before the first frame use plain HTTP statuses; after
// that the stream carries a terminal error event instead.
func (s *Server) handleRunStep(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	extractionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid extraction ID")
		return
	}

	var req types.RunStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sink, err := newEventWriter(w)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	err = s.runner.RunStep(r.Context(), userID, extractionID, req.Step, sink)
	switch {
	case err == nil:
	case errors.Is(err, pipeline.ErrUnknownStep):
		errorResponse(w, http.StatusBadRequest, "Invalid step number")
	case errors.Is(err, pipeline.ErrExtractionNotFound):
		errorResponse(w, http.StatusNotFound, "Extraction not found")
	case sink.Started():
		// The response is already committed; nothing left to send.
		log.Printf("step %d stream for extraction %s ended: %v", req.Step, extractionID, err)
	default:
		log.Printf("step %d failed for extraction %s: %v", req.Step, extractionID, err)
		errorResponse(w, http.StatusInternalServerError, "Failed to generate content")
	}
}

// handleAdvance moves the step pointer without generating content, for
// clients that navigate between already-generated steps or carry edited
// content for a slot.
func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	extractionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid extraction ID")
		return
	}

	var req types.AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, ok := steps.Get(req.Step); !ok {
		errorResponse(w, http.StatusBadRequest, "Invalid step number")
		return
	}

	ref, err := s.store.UpdateStepPointer(r.Context(), extractionID, userID, req.Step, req.Data)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			errorResponse(w, http.StatusNotFound, "Extraction not found")
			return
		}
		log.Printf("failed to advance extraction %s: %v", extractionID, err)
		errorResponse(w, http.StatusInternalServerError, "Failed to advance extraction")
		return
	}

	if err := s.store.TouchProgress(r.Context(), userID, req.Step); err != nil {
		log.Printf("warning: failed to update progress for user %s: %v", userID, err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"extraction": ref,
	})
}
