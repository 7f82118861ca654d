// Package segment turns the capture stream into discrete activity events
package segment

import "time"

// Segmentation constants
const (
	// Events shorter than this are discarded as flicker
	MinEventDuration = time.Second

	// Buffer for finalized-event notifications to the server
	EventChannelBuffer = 64

	// Placeholder written in place of blocked content
	RedactedTitle = "[Sensitive — not recorded]"

	// Tag carried by blocked placeholder events
	TagSensitive = "sensitive"
)

// Default segmenter settings
const (
	DefaultFrameDiffThreshold = 0.05
	DefaultIdleCoalesce       = 30 * time.Second
	DefaultThumbnailMaxWidth  = 320
)

// Reason records what trigger finalized an event.
type Reason string

const (
	ReasonAppSwitch     Reason = "app_switch"
	ReasonAppSwitchMeta Reason = "app_switch_meta"
	ReasonBlank         Reason = "blank"
	ReasonSensitive     Reason = "sensitive"
	ReasonIdleCoalesce  Reason = "idle_coalesce"
	ReasonFlush         Reason = "flush"
)
