// Package event defines activity events and their derived text
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/GriffinCanCode/glimpse/internal/sensitivity"
)

// AppContext identifies the frontmost application at capture time.
// Compared by value.
type AppContext struct {
	BundleID    string
	Name        string
	WindowTitle string
}

// Event is a bounded range of user activity. It is created open, extended
// in place while the same activity continues, and finalized exactly once.
type Event struct {
	ID            string
	Start         time.Time
	End           time.Time
	BundleID      string
	AppName       string
	WindowTitle   string
	Summary       string
	Tags          []string
	Sensitivity   sensitivity.Level
	ThumbnailPath string
	TextSnippet   string
}

// New creates an open event for the given context, with derived summary
// and tags. Start and End are both set to now; End advances as the event
// is extended.
func New(app AppContext, level sensitivity.Level, now time.Time) *Event {
	return &Event{
		ID:          uuid.NewString(),
		Start:       now,
		End:         now,
		BundleID:    app.BundleID,
		AppName:     app.Name,
		WindowTitle: app.WindowTitle,
		Summary:     Summarize(app.Name, app.WindowTitle),
		Tags:        DeriveTags(app.BundleID, app.WindowTitle),
		Sensitivity: level,
	}
}

// Duration is the event's covered time range.
func (e *Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}
