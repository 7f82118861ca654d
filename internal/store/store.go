// Package store defines durable storage for activity events
package store

import (
	"context"
	"time"

	"github.com/GriffinCanCode/glimpse/internal/event"
)

// Query narrows a Search. Zero values are ignored.
type Query struct {
	Keyword   string
	From      time.Time
	To        time.Time
	AppBundle string
	Limit     int
}

// Store persists finalized activity events. Insert is an idempotent upsert
// keyed by event id: replaying an id overwrites prior content.
type Store interface {
	Insert(ctx context.Context, ev event.Event) error
	CountEventsSince(ctx context.Context, since time.Time) (int, error)
	Search(ctx context.Context, q Query) ([]event.Event, error)
	Close() error
}
