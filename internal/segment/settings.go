// Package segment turns the capture stream into discrete activity events
package segment

import "time"

// Settings is an immutable snapshot of segmentation tuning. It can be
// swapped at runtime; in-flight open events are not retroactively altered.
type Settings struct {
	FrameDiffThreshold float64
	IdleCoalesce       time.Duration
	ExcludedApps       []string
	SaveThumbnails     bool
	ThumbnailMaxWidth  int
}

// DefaultSettings returns the stock configuration.
func DefaultSettings() Settings {
	return Settings{
		FrameDiffThreshold: DefaultFrameDiffThreshold,
		IdleCoalesce:       DefaultIdleCoalesce,
		ThumbnailMaxWidth:  DefaultThumbnailMaxWidth,
	}
}

// withDefaults backfills zero values so a partial settings swap cannot
// stall the segmenter.
func (s Settings) withDefaults() Settings {
	if s.FrameDiffThreshold <= 0 {
		s.FrameDiffThreshold = DefaultFrameDiffThreshold
	}
	if s.IdleCoalesce <= 0 {
		s.IdleCoalesce = DefaultIdleCoalesce
	}
	if s.ThumbnailMaxWidth <= 0 {
		s.ThumbnailMaxWidth = DefaultThumbnailMaxWidth
	}
	return s
}

// excludes reports whether the bundle id is ignored entirely.
func (s Settings) excludes(bundleID string) bool {
	for _, app := range s.ExcludedApps {
		if app == bundleID {
			return true
		}
	}
	return false
}
