// Package segment turns the capture stream into discrete activity events
package segment

import (
	"context"
	"sync"
	"time"

	"github.com/GriffinCanCode/glimpse/internal/event"
	"github.com/GriffinCanCode/glimpse/internal/frame"
	"github.com/GriffinCanCode/glimpse/internal/sensitivity"
	"github.com/GriffinCanCode/glimpse/internal/syncx"
	"github.com/GriffinCanCode/glimpse/internal/trace"
)

// Sink receives finalized events for durable storage. Insert must not
// block the caller; failures are reported, never retried here.
type Sink interface {
	Insert(ctx context.Context, ev event.Event) error
}

// Thumbnailer writes a downscaled frame and returns its path.
type Thumbnailer interface {
	Write(id string, f *frame.Buffer, maxWidth int) (string, error)
}

// FrameUpdate carries a captured frame with its application context.
// Text is an optional extracted-text snippet from the OCR collaborator.
type FrameUpdate struct {
	Frame *frame.Buffer
	App   event.AppContext
	Text  string
	Time  time.Time
}

// MetadataUpdate carries application context with no image attached.
type MetadataUpdate struct {
	App  event.AppContext
	Time time.Time
}

// Segmenter is the event state machine. At most one event is open at any
// instant; frame updates, metadata updates, and idle-timer firings all
// mutate that state under a single mutex.
type Segmenter struct {
	comparator *frame.Comparator
	classifier *sensitivity.Classifier
	sink       Sink
	thumbs     Thumbnailer
	settings   *syncx.RWGuard[Settings]
	eventsCh   chan event.Event

	mu        sync.Mutex
	open      *event.Event
	prev      *frame.Buffer
	lastApp   event.AppContext
	seenFrame bool
	closed    bool
	idle      *Coalescer
}

// New creates a segmenter. thumbs may be nil when thumbnails are disabled.
func New(comparator *frame.Comparator, classifier *sensitivity.Classifier, sink Sink, thumbs Thumbnailer, settings Settings) *Segmenter {
	s := &Segmenter{
		comparator: comparator,
		classifier: classifier,
		sink:       sink,
		thumbs:     thumbs,
		settings:   syncx.NewGuard(settings.withDefaults()),
		eventsCh:   make(chan event.Event, EventChannelBuffer),
	}
	s.idle = NewCoalescer(s.onIdle)
	return s
}

// Events returns finalized-event notifications. Slow consumers drop
// notifications; persistence never depends on this channel.
func (s *Segmenter) Events() <-chan event.Event {
	return s.eventsCh
}

// UpdateSettings swaps the settings snapshot. Applies to subsequent
// updates only.
func (s *Segmenter) UpdateSettings(settings Settings) {
	s.settings.Set(settings.withDefaults())
	trace.Logger(context.Background()).Info("segmenter settings updated",
		"threshold", settings.FrameDiffThreshold, "idle_coalesce", settings.IdleCoalesce)
}

// SettingsSnapshot returns the current settings.
func (s *Segmenter) SettingsSnapshot() Settings {
	return s.settings.Get()
}

// HandleFrame ingests one captured frame.
func (s *Segmenter) HandleFrame(ctx context.Context, u FrameUpdate) {
	cfg := s.settings.Get()
	if cfg.excludes(u.App.BundleID) {
		return
	}
	now := u.Time
	if now.IsZero() {
		now = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.comparator.IsBlank(u.Frame) {
		s.finalizeLocked(ctx, ReasonBlank, now)
		s.rememberLocked(u.Frame, u.App)
		return
	}

	level := s.classifier.WithText(u.App.BundleID, u.App.WindowTitle, u.Text)
	if level == sensitivity.Blocked {
		s.finalizeLocked(ctx, ReasonSensitive, now)
		s.writePlaceholderLocked(ctx, u.App, now)
		s.rememberLocked(u.Frame, u.App)
		return
	}

	switched := u.App.BundleID != s.lastApp.BundleID || u.App.WindowTitle != s.lastApp.WindowTitle

	significant := true
	if s.seenFrame {
		significant = s.comparator.Compare(s.prev, u.Frame, cfg.FrameDiffThreshold).Significant
	}

	switch {
	case switched:
		// The idle timer stays down after a switch; only continued
		// activity in the same context arms it.
		s.finalizeLocked(ctx, ReasonAppSwitch, now)
		s.openLocked(ctx, u.App, level, now, u.Frame, u.Text, cfg)
	case significant:
		if s.open == nil {
			s.openLocked(ctx, u.App, level, now, u.Frame, u.Text, cfg)
		} else {
			s.extendLocked(u.App, now)
		}
		s.idle.Reset(cfg.IdleCoalesce)
	default:
		// Quiet frame in the same context: bookkeeping only.
	}

	s.rememberLocked(u.Frame, u.App)
}

// HandleMetadata ingests a metadata-only update. Only an app-identity
// change matters at this level; title churn is left to the frame path.
func (s *Segmenter) HandleMetadata(ctx context.Context, u MetadataUpdate) {
	cfg := s.settings.Get()
	if cfg.excludes(u.App.BundleID) {
		return
	}
	now := u.Time
	if now.IsZero() {
		now = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if u.App.BundleID == s.lastApp.BundleID {
		return
	}

	s.finalizeLocked(ctx, ReasonAppSwitchMeta, now)

	level := s.classifier.FromMetadata(u.App.BundleID, u.App.WindowTitle)
	if level != sensitivity.Blocked {
		s.openLocked(ctx, u.App, level, now, nil, "", cfg)
	}
	s.lastApp = u.App
}

// Flush synchronously finalizes any open event and cancels the idle timer.
// Safe to call with nothing open; used at shutdown and capture stop.
func (s *Segmenter) Flush(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalizeLocked(ctx, ReasonFlush, time.Now())
}

// Close flushes any open event and closes the notification channel so
// listeners draining Events can exit. Updates must not be ingested after
// Close; a late timer firing is tolerated but notifies no one.
func (s *Segmenter) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalizeLocked(ctx, ReasonFlush, time.Now())
	if !s.closed {
		s.closed = true
		close(s.eventsCh)
	}
}

// onIdle fires when visual activity has been quiet for the coalesce window.
func (s *Segmenter) onIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalizeLocked(context.Background(), ReasonIdleCoalesce, time.Now())
}

// rememberLocked advances the previous-frame and last-identity bookkeeping.
func (s *Segmenter) rememberLocked(f *frame.Buffer, app event.AppContext) {
	if f != nil {
		s.prev = f
		s.seenFrame = true
	}
	s.lastApp = app
}

// openLocked creates the new open event. frameBuf and text may be absent
// for metadata-triggered opens.
func (s *Segmenter) openLocked(ctx context.Context, app event.AppContext, level sensitivity.Level, now time.Time, frameBuf *frame.Buffer, text string, cfg Settings) {
	ev := event.New(app, level, now)
	if text != "" {
		ev.TextSnippet = s.classifier.MaskText(text)
	}
	if cfg.SaveThumbnails && level == sensitivity.None && s.thumbs != nil && frameBuf != nil {
		path, err := s.thumbs.Write(ev.ID, frameBuf, cfg.ThumbnailMaxWidth)
		if err != nil {
			trace.Logger(ctx).Warn("thumbnail write failed", "error", err, "event_id", ev.ID)
		} else {
			ev.ThumbnailPath = path
		}
	}
	s.open = ev
}

// extendLocked continues the open event through now.
func (s *Segmenter) extendLocked(app event.AppContext, now time.Time) {
	s.open.End = now
	if app.WindowTitle != "" && app.WindowTitle != s.open.WindowTitle {
		s.open.WindowTitle = app.WindowTitle
	}
}

// finalizeLocked closes the open event, persisting it only when it lasted
// long enough to be real activity. The open slot is cleared and the idle
// timer cancelled regardless.
func (s *Segmenter) finalizeLocked(ctx context.Context, reason Reason, now time.Time) {
	s.idle.Stop()
	if s.open == nil {
		return
	}
	ev := s.open
	s.open = nil

	if now.After(ev.End) {
		ev.End = now
	}
	if ev.Duration() < MinEventDuration {
		trace.Logger(ctx).Debug("discarding short event",
			"reason", string(reason), "duration", ev.Duration(), "app", ev.BundleID)
		return
	}

	s.persistLocked(ctx, *ev, reason)
}

// writePlaceholderLocked records that blocked content occurred without
// retaining any of it. Written directly, bypassing open/continue.
func (s *Segmenter) writePlaceholderLocked(ctx context.Context, app event.AppContext, now time.Time) {
	ev := event.New(app, sensitivity.Blocked, now)
	ev.WindowTitle = RedactedTitle
	ev.Summary = RedactedTitle
	ev.Tags = []string{TagSensitive}
	s.persistLocked(ctx, *ev, ReasonSensitive)
}

// persistLocked hands the completed event to the sink and notifies
// listeners. Sink failures never roll back the in-memory finalize.
func (s *Segmenter) persistLocked(ctx context.Context, ev event.Event, reason Reason) {
	log := trace.Logger(ctx)
	if err := s.sink.Insert(ctx, ev); err != nil {
		log.Error("event persist failed", "error", err, "event_id", ev.ID)
	} else {
		log.Debug("event finalized",
			"reason", string(reason), "event_id", ev.ID, "app", ev.BundleID, "duration", ev.Duration())
	}

	if s.closed {
		return
	}
	select {
	case s.eventsCh <- ev:
	default:
		log.Debug("event channel full, notification dropped")
	}
}
