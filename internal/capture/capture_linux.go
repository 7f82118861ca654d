//go:build linux

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

type linuxBackend struct{ tempDir string }

func (l *linuxBackend) captureRaw() []byte {
	tmpFile := filepath.Join(l.tempDir, "screenshot.jpg")
	// Try gnome-screenshot first, fall back to scrot
	var cmd *exec.Cmd
	if _, err := exec.LookPath("gnome-screenshot"); err == nil {
		cmd = exec.Command("gnome-screenshot", "-f", tmpFile)
	} else if _, err := exec.LookPath("scrot"); err == nil {
		cmd = exec.Command("scrot", "-o", tmpFile)
	} else {
		slog.Error("no screenshot tool found (install gnome-screenshot or scrot)")
		return nil
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		slog.Error("screenshot failed", "error", err, "stderr", stderr.String())
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

func (l *linuxBackend) cleanup() {}

// New creates a platform-specific screen capturer
func New() Capturer {
	tmpDir, err := os.MkdirTemp("", "glimpse-screen-*")
	if err != nil {
		slog.Error("failed to create temp dir", "error", err)
		tmpDir = os.TempDir()
	}
	return newBase(&linuxBackend{tempDir: tmpDir}, tmpDir)
}

type linuxMetadata struct{}

// NewMetadataSource creates a platform-specific frontmost-app source.
func NewMetadataSource() MetadataSource {
	return &linuxMetadata{}
}

// Frontmost uses xdotool to read the active window. There is no bundle
// identifier on X11, so the window class stands in for it.
func (m *linuxMetadata) Frontmost(ctx context.Context) (event.AppContext, error) {
	if _, err := exec.LookPath("xdotool"); err != nil {
		return event.AppContext{}, apperrors.New(apperrors.CaptureFailed, "xdotool not installed")
	}

	title, err := exec.CommandContext(ctx, "xdotool", "getactivewindow", "getwindowname").Output()
	if err != nil {
		return event.AppContext{}, apperrors.Wrap(err, apperrors.CaptureFailed, "active window query failed")
	}
	class, err := exec.CommandContext(ctx, "xdotool", "getactivewindow", "getwindowclassname").Output()
	if err != nil {
		return event.AppContext{}, apperrors.Wrap(err, apperrors.CaptureFailed, "window class query failed")
	}

	name := strings.TrimSpace(string(class))
	return event.AppContext{
		BundleID:    strings.ToLower(name),
		Name:        name,
		WindowTitle: strings.TrimSpace(string(title)),
	}, nil
}
