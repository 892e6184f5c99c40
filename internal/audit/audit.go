// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

// Package audit records an append-only trail of authentication events.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
)

// Event is one audit record. IDs are ULIDs so the trail sorts by time.
type Event struct {
	ID        ulid.ULID
	Kind      string
	ActorID   string
	Detail    map[string]any
	CreatedAt time.Time
}

// EventRepository persists audit events.
type EventRepository interface {
	Append(ctx context.Context, event Event) error
}

// Recorder writes audit events best-effort: failures are logged, never
// surfaced, so auditing cannot fail a login.
type Recorder struct {
	repo   EventRepository
	logger *slog.Logger
}

// NewRecorder creates a Recorder.
func NewRecorder(repo EventRepository, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{repo: repo, logger: logger}
}

// Record appends an event, swallowing and logging any failure.
func (r *Recorder) Record(ctx context.Context, kind, actorID string, detail map[string]any) {
	event := Event{
		ID:        ulid.Make(),
		Kind:      kind,
		ActorID:   actorID,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.repo.Append(ctx, event); err != nil {
		r.logger.Warn("audit append failed",
			"kind", kind,
			"actor_id", actorID,
			"error", err)
	}
}
