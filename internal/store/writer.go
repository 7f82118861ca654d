// Package store defines durable storage for activity events
package store

import (
	"context"
	"sync"

	apperrors "github.com/GriffinCanCode/glimpse/internal/errors"
	"github.com/GriffinCanCode/glimpse/internal/event"
	"github.com/GriffinCanCode/glimpse/internal/resilience"
	"github.com/GriffinCanCode/glimpse/internal/trace"
)

// DefaultWriterQueueSize bounds the hand-off queue between the segmenter
// and the durable store.
const DefaultWriterQueueSize = 256

// Writer decouples durable writes from the segmenter's ingest path.
// Insert enqueues without blocking; a background worker performs the
// store write with retries. A full queue drops the event with a log line
// rather than stalling ingest.
type Writer struct {
	store Store
	retry resilience.RetryConfig
	queue chan event.Event
	wg    sync.WaitGroup
}

// NewWriter creates a writer and starts its worker.
func NewWriter(s Store, queueSize int) *Writer {
	if queueSize <= 0 {
		queueSize = DefaultWriterQueueSize
	}
	w := &Writer{
		store: s,
		retry: resilience.StoreRetryConfig(),
		queue: make(chan event.Event, queueSize),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Insert enqueues an event for durable storage. Never blocks.
func (w *Writer) Insert(_ context.Context, ev event.Event) error {
	select {
	case w.queue <- ev:
		return nil
	default:
		return apperrors.New(apperrors.StoreQueueFull, "event dropped, write queue full").
			WithMetadata("event_id", ev.ID)
	}
}

func (w *Writer) run() {
	defer w.wg.Done()
	for ev := range w.queue {
		w.write(ev)
	}
}

func (w *Writer) write(ev event.Event) {
	ctx, span := trace.StartSpan(context.Background(), "store_write")
	defer span.End()
	span.SetAttr("event_id", ev.ID)

	err := resilience.Retry(ctx, w.retry, func() error {
		return w.store.Insert(ctx, ev)
	})
	if err != nil {
		span.SetAttr("error", err.Error())
		trace.Logger(ctx).Error("durable event write failed", "error", err, "event_id", ev.ID)
	}
}

// Stop drains the queue and waits for the worker to finish. The writer
// must not be used afterwards.
func (w *Writer) Stop() {
	close(w.queue)
	w.wg.Wait()
}
