//go:build windows

package capture

import (
	"context"
	"log/slog"
	"os"

	apperrors "github.com/GriffinCanCode/glimpse/internal/errors"
	"github.com/GriffinCanCode/glimpse/internal/event"
)

type windowsBackend struct{ tempDir string }

func (w *windowsBackend) captureRaw() []byte {
	// TODO: Implement using Windows GDI or DXGI
	slog.Warn("Windows screen capture not yet implemented")
	return nil
}

func (w *windowsBackend) cleanup() {}

// New creates a platform-specific screen capturer
func New() Capturer {
	tmpDir, err := os.MkdirTemp("", "glimpse-screen-*")
	if err != nil {
		slog.Error("failed to create temp dir", "error", err)
		tmpDir = os.TempDir()
	}
	return newBase(&windowsBackend{tempDir: tmpDir}, tmpDir)
}

type windowsMetadata struct{}

// NewMetadataSource creates a platform-specific frontmost-app source.
func NewMetadataSource() MetadataSource {
	return &windowsMetadata{}
}

func (m *windowsMetadata) Frontmost(_ context.Context) (event.AppContext, error) {
	return event.AppContext{}, apperrors.New(apperrors.CaptureFailed, "Windows frontmost app query not yet implemented")
}
