package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/karkeeg/productforge/internal/db"
	"github.com/karkeeg/productforge/internal/server/middleware"
)

// handleGetProgress returns the caller's progress aggregate. Users who have
// not completed a step yet get a zeroed aggregate rather than a 404.
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	progress, err := s.store.GetProgress(r.Context(), userID)
	if err != nil {
		log.Printf("failed to get progress for user %s: %v", userID, err)
		errorResponse(w, http.StatusInternalServerError, "Failed to get progress")
		return
	}
	if progress == nil {
		progress = &db.Progress{
			UserID:       userID,
			Achievements: json.RawMessage("[]"),
			CurrentPhase: db.PhaseOnboarding,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"progress": progress})
}

// handleCompleteOnboarding marks the caller as onboarded and seeds their
// progress row.
func (s *Server) handleCompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := s.store.CompleteOnboarding(r.Context(), userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			errorResponse(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("failed to complete onboarding for user %s: %v", userID, err)
		errorResponse(w, http.StatusInternalServerError, "Failed to complete onboarding")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
