package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/kbinani/screenshot"
)

// Capture is one persisted screenshot: the PNG bytes read back from disk
// plus the file they live in.
type Capture struct {
	Data []byte
	Path string
}

// CaptureScreen captures the entire virtual screen, persists it as a PNG
// under the pictures directory, and reads the file back so Data is exactly
// the persisted payload. The file is never deleted by this program.
func CaptureScreen() (Capture, error) {
	img, err := captureVirtualScreen()
	if err != nil {
		return Capture{}, fmt.Errorf("failed to capture screen: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Capture{}, fmt.Errorf("failed to encode image as PNG: %w", err)
	}

	dir, err := Dir()
	if err != nil {
		return Capture{}, err
	}
	path := filepath.Join(dir, FileName(time.Now()))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return Capture{}, fmt.Errorf("failed to write screenshot file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Capture{}, fmt.Errorf("failed to read back screenshot file: %w", err)
	}

	return Capture{Data: data, Path: path}, nil
}

// captureVirtualScreen captures the union of all active display bounds.
func captureVirtualScreen() (*image.RGBA, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays found")
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return screenshot.CaptureRect(union)
}

// FileName returns the persisted-file name for a capture taken at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("screenshot_%d.png", t.UnixMilli())
}

// Dir returns the pictures directory used for persisted captures, creating
// it if needed. xdg resolves the platform pictures folder; falls back to
// $HOME/Pictures when unset.
func Dir() (string, error) {
	dir := xdg.UserDirs.Pictures
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve pictures directory: %w", err)
		}
		dir = filepath.Join(home, "Pictures")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create pictures directory: %w", err)
	}
	return dir, nil
}
