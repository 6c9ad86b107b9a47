// Package pipeline orchestrates a single extraction step: prompt assembly,
// upstream generation, client streaming, and persistence of the result.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/karkeeg/productforge/internal/db"
	"github.com/karkeeg/productforge/internal/llm"
	"github.com/karkeeg/productforge/internal/prompts"
	"github.com/karkeeg/productforge/internal/schemas"
	"github.com/karkeeg/productforge/internal/steps"
	"github.com/karkeeg/productforge/internal/stream"
)

// Request-level failures, raised before any event reaches the sink. The
// handler maps these to HTTP statuses; everything after the first event is
// reported in-band as an error event.
var (
	ErrUnknownStep        = errors.New("unknown step number")
	ErrExtractionNotFound = errors.New("extraction not found")
)

// Store is the persistence surface the orchestrator needs. Running a step
// only writes the step result; the progress aggregate moves when the client
// explicitly advances the step pointer.
type Store interface {
	GetExtraction(ctx context.Context, id, userID uuid.UUID) (*db.Extraction, error)
	SaveStepResult(ctx context.Context, id, userID uuid.UUID, def steps.Definition, result json.RawMessage) error
}

// Orchestrator runs extraction steps against a store and an LLM backend.
type Orchestrator struct {
	store    Store
	streamer llm.Streamer
}

// New creates an Orchestrator.
func New(store Store, streamer llm.Streamer) *Orchestrator {
	return &Orchestrator{store: store, streamer: streamer}
}

// RunStep executes one step of an extraction and streams progress to the
// sink. Errors returned before the first Send are request-level and carry no
// partial stream; once streaming has begun, failures are delivered as a
// terminal error event and RunStep returns nil. A non-nil return after
// streaming began means the client is gone.
func (o *Orchestrator) RunStep(ctx context.Context, userID, extractionID uuid.UUID, stepNumber int, sink stream.Sink) error {
	def, ok := steps.Get(stepNumber)
	if !ok {
		return ErrUnknownStep
	}

	ext, err := o.store.GetExtraction(ctx, extractionID, userID)
	if err != nil {
		return fmt.Errorf("failed to load extraction: %w", err)
	}
	if ext == nil {
		return ErrExtractionNotFound
	}

	prompt, err := prompts.Build(def, prompts.Snapshot{
		Title:          ext.Title,
		TargetAudience: ext.TargetAudience,
		Transformation: ext.Transformation,
		ProductIdea:    ext.ProductIdea,
		SixPillars:     ext.SixPillars,
	})
	if err != nil {
		return fmt.Errorf("failed to build prompt: %w", err)
	}

	upstream, err := o.streamer.StreamChat(ctx, prompt, def.ExpectsJSON)
	if err != nil {
		return fmt.Errorf("failed to start generation: %w", err)
	}
	defer upstream.Close()

	// The relay drains upstream in its own goroutine while delivery to
	// the client happens here. A delivery failure cancels the group,
	// which aborts the relay mid-read.
	events := make(chan stream.Event, 16)
	g, gCtx := errgroup.WithContext(ctx)

	var raw string
	g.Go(func() error {
		defer close(events)
		acc, err := stream.Relay(upstream, stream.SinkFunc(func(ev stream.Event) error {
			select {
			case events <- ev:
				return nil
			case <-gCtx.Done():
				return gCtx.Err()
			}
		}))
		if err != nil {
			return err
		}
		raw = acc
		return nil
	})

	var sendErr error
	g.Go(func() error {
		for ev := range events {
			if err := sink.Send(ev); err != nil {
				sendErr = err
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if sendErr != nil {
			return fmt.Errorf("failed to deliver stream: %w", sendErr)
		}
		log.Printf("step %d generation failed for extraction %s: %v", def.Number, extractionID, err)
		_ = sink.Send(stream.Failure("Failed to generate content. Please try again."))
		return nil
	}

	result, kind := stream.Interpret(def.ExpectsJSON, raw)
	if kind == stream.KindFallback {
		log.Printf("step %d produced non-JSON output for extraction %s; stored as wrapped content", def.Number, extractionID)
	}
	if kind == stream.KindStructured {
		if violations, err := schemas.Check(def.Slot, result); err != nil {
			log.Printf("warning: schema check failed for step %d: %v", def.Number, err)
		} else if len(violations) > 0 {
			log.Printf("step %d output diverges from the %s schema: %v", def.Number, def.Slot, violations)
		}
	}

	if err := o.store.SaveStepResult(ctx, extractionID, userID, def, result); err != nil {
		log.Printf("failed to save step %d result for extraction %s: %v", def.Number, extractionID, err)
		_ = sink.Send(stream.Failure("Failed to save the generated content. Please retry the step."))
		return nil
	}

	if err := sink.Send(stream.Completed(result)); err != nil {
		return fmt.Errorf("failed to deliver completion: %w", err)
	}
	return nil
}
