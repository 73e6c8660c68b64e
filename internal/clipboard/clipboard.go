// Package clipboard copies text out of the application. A system clipboard
// is used when available; otherwise the text is handed to the terminal via
// an OSC 52 escape sequence, which completes synchronously.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
	"go.uber.org/zap"

	apperrors "github.com/dpshade/prompt-catalog/internal/errors"
)

// Writer places text on some clipboard.
type Writer interface {
	Write(text string) error
	Name() string
}

// ClipboardError represents an error when no clipboard utility is available
type ClipboardError struct {
	OS      string
	Message string
}

func (e *ClipboardError) Error() string {
	return e.Message
}

// NewClipboardError creates a new ClipboardError with helpful installation instructions
func NewClipboardError() *ClipboardError {
	return &ClipboardError{
		OS:      runtime.GOOS,
		Message: "no clipboard utility found. " + GetInstallInstructions(),
	}
}

// SystemWriter writes to the OS clipboard.
type SystemWriter struct{}

func (SystemWriter) Name() string { return "system" }

func (SystemWriter) Write(text string) error {
	if clipboard.Unsupported {
		return NewClipboardError()
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("system clipboard failed: %w", err)
	}
	return nil
}

// OSC52Writer emits an OSC 52 sequence to Out, which is normally the
// controlling terminal.
type OSC52Writer struct {
	Out io.Writer
}

func (w OSC52Writer) Name() string { return "osc52" }

func (w OSC52Writer) Write(text string) error {
	out := w.Out
	if out == nil {
		out = os.Stderr
	}
	seq := osc52.New(text)
	if os.Getenv("TMUX") != "" {
		seq = seq.Tmux()
	}
	if _, err := seq.WriteTo(out); err != nil {
		return fmt.Errorf("osc52 write failed: %w", err)
	}
	return nil
}

// FallbackWriter tries Primary and falls back to Secondary on failure.
type FallbackWriter struct {
	Primary   Writer
	Secondary Writer
	Logger    *zap.Logger
}

func (f *FallbackWriter) Name() string {
	return f.Primary.Name() + "+" + f.Secondary.Name()
}

// Write reports an error only when both writers fail.
func (f *FallbackWriter) Write(text string) error {
	primaryErr := f.Primary.Write(text)
	if primaryErr == nil {
		return nil
	}
	if f.Logger != nil {
		f.Logger.Warn("primary clipboard failed, using fallback",
			zap.String("primary", f.Primary.Name()),
			zap.String("fallback", f.Secondary.Name()),
			zap.Error(primaryErr))
	}
	if err := f.Secondary.Write(text); err != nil {
		return apperrors.ClipboardError(errors.Join(primaryErr, err))
	}
	return nil
}

// Detect builds the writer chain for this environment. The system clipboard
// is only tried when the platform supports it.
func Detect(terminal io.Writer, logger *zap.Logger) Writer {
	fallback := OSC52Writer{Out: terminal}
	if !IsClipboardAvailable() {
		return fallback
	}
	return &FallbackWriter{Primary: SystemWriter{}, Secondary: fallback, Logger: logger}
}

// CopyWithFallback copies text and returns the toast message to show
func CopyWithFallback(w Writer, text, success string) (string, error) {
	if err := w.Write(text); err != nil {
		var clipErr *ClipboardError
		if errors.As(err, &clipErr) {
			return "", err
		}
		return "", fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	if success == "" {
		success = "Copied to clipboard!"
	}
	return success, nil
}

// IsClipboardAvailable checks if clipboard functionality is available
func IsClipboardAvailable() bool {
	return !clipboard.Unsupported
}

// GetInstallInstructions returns installation instructions for clipboard utilities
func GetInstallInstructions() string {
	switch runtime.GOOS {
	case "linux":
		return "Install a clipboard utility:\n" +
			"  • Ubuntu/Debian: sudo apt install xclip\n" +
			"  • Fedora/RHEL: sudo dnf install xclip\n" +
			"  • Arch: sudo pacman -S xclip\n" +
			"  • For Wayland: install wl-clipboard"
	case "darwin":
		return "pbcopy should be available by default on macOS"
	case "windows":
		return "clip should be available by default on Windows"
	default:
		return fmt.Sprintf("Clipboard not supported on %s", runtime.GOOS)
	}
}
