package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/karkeeg/productforge/internal/steps"
)

// TouchProgress upserts the user's progress aggregate after a step
// transition. Counter math happens in SQL so concurrent transitions for the
// same user cannot under-count.
func (db *DB) TouchProgress(ctx context.Context, userID uuid.UUID, targetStep int) error {
	completedDelta := 0
	phase := PhaseExtraction
	if targetStep == steps.FinalStep {
		completedDelta = 1
		phase = PhaseProductCreation
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO user_progress (user_id, completed_extractions, current_phase, time_in_system, last_active_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET
		   completed_extractions = user_progress.completed_extractions + $2,
		   current_phase = $3,
		   time_in_system = user_progress.time_in_system + $4,
		   last_active_at = NOW()`,
		userID, completedDelta, phase, TimeIncrementMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to touch progress: %w", err)
	}
	return nil
}

// GetProgress retrieves a user's progress aggregate, or (nil, nil) if the
// user has never touched the pipeline.
func (db *DB) GetProgress(ctx context.Context, userID uuid.UUID) (*Progress, error) {
	var p Progress
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, completed_extractions, completed_products, time_in_system,
		        achievements, current_phase, last_active_at
		 FROM user_progress WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.CompletedExtractions, &p.CompletedProducts, &p.TimeInSystem,
		&p.Achievements, &p.CurrentPhase, &p.LastActiveAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return &p, nil
}

// CompleteOnboarding marks the user onboarded and seeds the progress
// aggregate with the welcome achievement and the initial time credit.
func (db *DB) CompleteOnboarding(ctx context.Context, userID uuid.UUID) error {
	achievements, err := json.Marshal([]map[string]any{{
		"id":          "onboarding-complete",
		"title":       "Welcome Aboard!",
		"description": "Completed onboarding successfully",
		"unlocked":    true,
		"unlockedAt":  time.Now().UTC().Format(time.RFC3339),
	}})
	if err != nil {
		return fmt.Errorf("failed to marshal achievements: %w", err)
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE users SET onboarding_completed = TRUE, updated_at = NOW() WHERE id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark onboarding complete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO user_progress (user_id, current_phase, achievements, time_in_system, last_active_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET
		   current_phase = $2,
		   achievements = $3,
		   last_active_at = NOW()`,
		userID, PhaseExtraction, achievements, TimeIncrementMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to seed progress: %w", err)
	}
	return nil
}
