package client

import (
	"context"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/makiuchi-d/gozxing"
	qrreader "github.com/makiuchi-d/gozxing/qrcode"

	"github.com/emldov7/evMonde--sub000/internal/dto"
)

// Verdict is the traffic-light outcome shown to the gate agent
type Verdict string

// Scan verdicts
const (
	VerdictGreen  Verdict = "green"  // first scan, let through
	VerdictYellow Verdict = "yellow" // second scan, hold and check
	VerdictRed    Verdict = "red"    // fraud or invalid, refuse
)

// ErrNoQRCode is returned when an image contains no readable QR code
var ErrNoQRCode = errors.New("no QR code found in image")

// DecodeImage extracts the QR payload from a PNG or JPEG image
func DecodeImage(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", err
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", err
	}
	result, err := qrreader.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", ErrNoQRCode
	}
	return result.GetText(), nil
}

// Classify maps a verification response to a gate verdict. The structured
// scan_status field decides; responses from servers that predate it are
// classified from the valid flag and the alert wording in the message.
func Classify(resp *dto.VerifyQRResponse) Verdict {
	switch resp.ScanStatus {
	case dto.ScanStatusFirstScan:
		return VerdictGreen
	case dto.ScanStatusAlreadyScanned:
		return VerdictYellow
	case dto.ScanStatusFraudDetected, dto.ScanStatusInvalid:
		return VerdictRed
	}

	if resp.Valid {
		return VerdictGreen
	}
	if strings.Contains(resp.Message, "ALERTE") {
		return VerdictYellow
	}
	if strings.Contains(resp.Message, "FRAUDE") {
		return VerdictRed
	}
	return VerdictRed
}

// ScanResult bundles the server response with its classification
type ScanResult struct {
	Verdict  Verdict
	Response *dto.VerifyQRResponse
}

// ScanImage decodes a QR code from an image and verifies it
func (c *Client) ScanImage(ctx context.Context, r io.Reader) (*ScanResult, error) {
	payload, err := DecodeImage(r)
	if err != nil {
		return nil, err
	}
	return c.Scan(ctx, payload)
}

// Scan verifies a raw QR payload and classifies the outcome
func (c *Client) Scan(ctx context.Context, payload string) (*ScanResult, error) {
	resp, err := c.VerifyQR(ctx, payload)
	if err != nil {
		return nil, err
	}
	return &ScanResult{Verdict: Classify(resp), Response: resp}, nil
}
