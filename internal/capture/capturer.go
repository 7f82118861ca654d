// Package capture drives periodic screen and app-metadata sampling
package capture

import (
	"context"
	"crypto/md5"
	"os"

	"github.com/GriffinCanCode/glimpse/internal/event"
)

// Capturer captures screenshots with cheap change detection.
type Capturer interface {
	// Capture returns encoded image bytes and whether the screen changed
	// since the previous call. Unchanged screens return (nil, false).
	Capture() ([]byte, bool)
	// CaptureAlways captures regardless of change detection.
	CaptureAlways() []byte
	Close()
}

// MetadataSource reports the frontmost application context.
type MetadataSource interface {
	Frontmost(ctx context.Context) (event.AppContext, error)
}

// backend implements platform-specific raw capture
type backend interface {
	captureRaw() []byte
	cleanup()
}

// baseCapturer provides shared hash-based change detection
type baseCapturer struct {
	backend
	lastHash [16]byte
	tempDir  string
}

func newBase(b backend, tempDir string) *baseCapturer {
	return &baseCapturer{backend: b, tempDir: tempDir}
}

func (c *baseCapturer) Capture() ([]byte, bool) {
	data := c.captureRaw()
	if data == nil {
		return nil, false
	}
	hash := md5.Sum(data[:min(len(data), ChangeHashBytes)])
	if hash == c.lastHash {
		return nil, false
	}
	c.lastHash = hash
	return data, true
}

func (c *baseCapturer) CaptureAlways() []byte {
	data := c.captureRaw()
	if data != nil {
		c.lastHash = md5.Sum(data[:min(len(data), ChangeHashBytes)])
	}
	return data
}

func (c *baseCapturer) Close() {
	c.cleanup()
	if c.tempDir != "" {
		os.RemoveAll(c.tempDir)
	}
}
