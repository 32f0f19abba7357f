// Package qr renders QR symbols for client onboarding, either as a
// terminal-printable block drawing or as a PNG file.
package qr

import (
	"fmt"
	"io"

	"github.com/mdp/qrterminal/v3"
	qrcode "github.com/skip2/go-qrcode"
)

// DefaultPNGSize is the rendered PNG edge length in pixels.
const DefaultPNGSize = 512

// WriteTerminal renders the payload as a half-block QR drawing to w.
func WriteTerminal(payload string, w io.Writer) {
	qrterminal.GenerateHalfBlock(payload, qrterminal.L, w)
}

// WritePNG renders the payload as a PNG file. Error-correction level Low
// keeps the symbol small enough to scan even for full JSON configs.
func WritePNG(payload, path string) error {
	if err := qrcode.WriteFile(payload, qrcode.Low, DefaultPNGSize, path); err != nil {
		return fmt.Errorf("failed to write QR image: %w", err)
	}
	return nil
}
