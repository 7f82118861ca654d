//go:build darwin

package capture

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	apperrors "github.com/GriffinCanCode/glimpse/internal/errors"
	"github.com/GriffinCanCode/glimpse/internal/event"
)

type darwinBackend struct{ tempDir string }

func (d *darwinBackend) captureRaw() []byte {
	tmpFile := filepath.Join(d.tempDir, "screenshot.jpg")
	cmd := exec.Command("screencapture", "-x", "-t", "jpg", "-m", tmpFile)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		slog.Error("screencapture failed", "error", err, "stderr", stderr.String())
		return nil
	}
	data, err := os.ReadFile(tmpFile)
	if err != nil {
		slog.Error("failed to read screenshot", "error", err)
		return nil
	}
	os.Remove(tmpFile)
	return data
}

func (d *darwinBackend) cleanup() {}

// New creates a platform-specific screen capturer
func New() Capturer {
	tmpDir, err := os.MkdirTemp("", "glimpse-screen-*")
	if err != nil {
		slog.Error("failed to create temp dir", "error", err)
		tmpDir = os.TempDir()
	}
	return newBase(&darwinBackend{tempDir: tmpDir}, tmpDir)
}

// frontmostScript asks System Events for the active process and its
// focused window title. Fields are separated by a tab to survive titles
// that contain commas.
const frontmostScript = `tell application "System Events"
	set p to first process whose frontmost is true
	set b to bundle identifier of p
	set n to name of p
	set t to ""
	try
		set t to name of front window of p
	end try
	return b & "\t" & n & "\t" & t
end tell`

type darwinMetadata struct{}

// NewMetadataSource creates a platform-specific frontmost-app source.
func NewMetadataSource() MetadataSource {
	return &darwinMetadata{}
}

func (m *darwinMetadata) Frontmost(ctx context.Context) (event.AppContext, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e", frontmostScript).Output()
	if err != nil {
		return event.AppContext{}, apperrors.Wrap(err, apperrors.CaptureFailed, "frontmost app query failed")
	}
	parts := strings.SplitN(strings.TrimRight(string(out), "\n"), "\t", 3)
	app := event.AppContext{}
	if len(parts) > 0 {
		app.BundleID = parts[0]
	}
	if len(parts) > 1 {
		app.Name = parts[1]
	}
	if len(parts) > 2 {
		app.WindowTitle = parts[2]
	}
	return app, nil
}
