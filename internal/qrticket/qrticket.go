// Package qrticket mints the QR payloads and images attached to
// confirmed registrations.
package qrticket

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// Minter writes QR ticket PNGs under dir and serves them from baseURL.
type Minter struct {
	dir     string
	baseURL string
	size    int
}

// NewMinter creates a Minter. Size is the PNG edge in pixels; 256 when zero.
func NewMinter(dir, baseURL string, size int) *Minter {
	if size <= 0 {
		size = 256
	}
	return &Minter{dir: dir, baseURL: baseURL, size: size}
}

// NewPayload returns a fresh unique QR payload
func NewPayload() string {
	return uuid.NewString()
}

// Mint encodes the payload as a PNG and returns its public URL. The file
// name is the payload itself so a ticket can be re-served without state.
func (m *Minter) Mint(payload string) (string, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("create qr dir: %w", err)
	}

	filename := payload + ".png"
	path := filepath.Join(m.dir, filename)
	if err := qrcode.WriteFile(payload, qrcode.Medium, m.size, path); err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}

	return m.baseURL + "/qr/" + filename, nil
}

// Remove deletes a minted ticket image, ignoring files already gone
func (m *Minter) Remove(payload string) error {
	err := os.Remove(filepath.Join(m.dir, payload+".png"))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
