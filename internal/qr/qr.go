// Package qr writes QR code PNGs pointing at detail pages.
package qr

import (
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
)

// Default rendering: 10 pixels per module, 4 module quiet zone, level M.
const (
	DefaultModuleSize = 10
)

// Options controls QR rendering.
type Options struct {
	ModuleSize int // pixels per module
	Level      qrcode.RecoveryLevel
}

// DefaultOptions returns the standard rendering options.
func DefaultOptions() Options {
	return Options{ModuleSize: DefaultModuleSize, Level: qrcode.Medium}
}

// Encode renders content as PNG bytes.
func Encode(content string, opts Options) ([]byte, error) {
	if opts.ModuleSize <= 0 {
		opts.ModuleSize = DefaultModuleSize
	}
	q, err := qrcode.New(content, opts.Level)
	if err != nil {
		return nil, fmt.Errorf("qr encode %q: %w", content, err)
	}
	// a negative size means pixels per module; the quiet zone stays on
	return q.PNG(-opts.ModuleSize)
}

// WriteFile renders content as a PNG at path.
func WriteFile(path, content string, opts Options) error {
	data, err := Encode(content, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
