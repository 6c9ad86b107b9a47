package db

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/karkeeg/productforge/internal/steps"
)

const extractionColumns = `id, user_id, title, niche, target_audience, transformation,
	product_idea, six_pillars, methodology, resources, sales_page,
	current_step, is_complete, created_at, updated_at`

// psql builds queries with Postgres-style placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// CreateExtraction creates a new session at step 1 with the derived product
// idea and the seed six-pillar slot.
func (db *DB) CreateExtraction(ctx context.Context, userID uuid.UUID, input CreateExtractionInput) (*Extraction, error) {
	productIdea := fmt.Sprintf(
		"%s — A digital product that helps %s go from their current challenges to %s in %s minutes.",
		input.Title, input.TargetAudience, input.Transformation, input.Timeframe,
	)

	seedPillars, err := json.Marshal(map[string]any{
		"timeframe": input.Timeframe,
		"expertise": input.Expertise,
		"pillars":   []any{},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal seed pillars: %w", err)
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO extractions
		   (user_id, title, niche, target_audience, transformation, product_idea, six_pillars, current_step)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, 1)
		 RETURNING `+extractionColumns,
		userID, input.Title, input.Niche, input.TargetAudience, input.Transformation,
		productIdea, seedPillars,
	)

	extraction, err := scanExtraction(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction: %w", err)
	}
	return extraction, nil
}

// GetExtraction retrieves an extraction by id for its owner. Returns
// (nil, nil) when the record is absent or owned by someone else.
func (db *DB) GetExtraction(ctx context.Context, id, userID uuid.UUID) (*Extraction, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+extractionColumns+` FROM extractions WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	extraction, err := scanExtraction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get extraction: %w", err)
	}
	return extraction, nil
}

// ListExtractions retrieves a user's extractions, newest first.
func (db *DB) ListExtractions(ctx context.Context, userID uuid.UUID, filters ExtractionFilters) ([]Extraction, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}

	builder := psql.Select(extractionColumns).
		From("extractions").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(filters.Limit))

	if filters.Niche != "" {
		builder = builder.Where(sq.ILike{"niche": "%" + filters.Niche + "%"})
	}
	if filters.Complete != nil {
		builder = builder.Where(sq.Eq{"is_complete": *filters.Complete})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list extractions: %w", err)
	}
	defer rows.Close()

	var extractions []Extraction
	for rows.Next() {
		extraction, err := scanExtraction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan extraction: %w", err)
		}
		extractions = append(extractions, *extraction)
	}
	return extractions, rows.Err()
}

// SaveStepResult persists an interpreted step result into the slot the step
// catalog routes it to and advances the step cursor, re-validating ownership
// in the same statement. The resources merge touches a single key so
// concurrent runs of different steps cannot lose each other's writes.
func (db *DB) SaveStepResult(ctx context.Context, id, userID uuid.UUID, def steps.Definition, result json.RawMessage) error {
	var query string
	args := []any{id, userID, result, def.Number}

	switch def.Slot {
	case steps.SlotSixPillars:
		query = `UPDATE extractions
		         SET six_pillars = $3, current_step = $4, updated_at = NOW()
		         WHERE id = $1 AND user_id = $2`
	case steps.SlotMethodology:
		query = `UPDATE extractions
		         SET methodology = $3, current_step = $4, updated_at = NOW()
		         WHERE id = $1 AND user_id = $2`
	case steps.SlotSalesPage:
		query = `UPDATE extractions
		         SET sales_page = $3, current_step = $4, updated_at = NOW()
		         WHERE id = $1 AND user_id = $2`
	default:
		query = `UPDATE extractions
		         SET resources = jsonb_set(COALESCE(resources, '{}'::jsonb), $5, $3),
		             current_step = $4, updated_at = NOW()
		         WHERE id = $1 AND user_id = $2`
		args = append(args, []string{fmt.Sprintf("step_%d", def.Number)})
	}

	tag, err := db.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save step %d result: %w", def.Number, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStepPointer is the explicit step-jump path: it moves the cursor,
// recomputes completion, and (only for steps with a reviewable artifact)
// writes the supplied data into that step's slot.
func (db *DB) UpdateStepPointer(ctx context.Context, id, userID uuid.UUID, step int, data json.RawMessage) (*ExtractionRef, error) {
	builder := psql.Update("extractions").
		Set("current_step", step).
		Set("is_complete", step == steps.FinalStep).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "user_id": userID}).
		Suffix("RETURNING id, current_step, is_complete")

	if data != nil {
		// Manual override: the client may supply a slot value directly,
		// without having run the generation pipeline for that step.
		switch step {
		case 1:
			builder = builder.Set("six_pillars", data)
		case 3:
			builder = builder.Set("methodology", data)
		case 4:
			builder = builder.Set("resources", data)
		case 5:
			builder = builder.Set("sales_page", data)
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build pointer update: %w", err)
	}

	var ref ExtractionRef
	err = db.pool.QueryRow(ctx, query, args...).Scan(&ref.ID, &ref.CurrentStep, &ref.IsComplete)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update step pointer: %w", err)
	}
	return &ref, nil
}

func scanExtraction(row pgx.Row) (*Extraction, error) {
	var e Extraction
	err := row.Scan(
		&e.ID, &e.UserID, &e.Title, &e.Niche, &e.TargetAudience, &e.Transformation,
		&e.ProductIdea, &e.SixPillars, &e.Methodology, &e.Resources, &e.SalesPage,
		&e.CurrentStep, &e.IsComplete, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
