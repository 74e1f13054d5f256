// Package gateway provides access to the forensic event store.
package gateway

import (
	"context"

	"github.com/casetrace-systems/casetrace/investigate/internal/models"
)

// IndexResult reports the outcome of a bulk index operation. Indexing is
// best-effort per event: individual failures are collected, not fatal.
type IndexResult struct {
	Indexed int      `json:"indexed"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// EventStore abstracts the event backend so the service layer and tests
// do not depend on a live cluster.
type EventStore interface {
	// Fetch returns events matching the filter, most recent first.
	Fetch(ctx context.Context, f models.Filter) ([]models.Event, error)

	// Index writes events to the store.
	Index(ctx context.Context, events []models.Event) (*IndexResult, error)
}
