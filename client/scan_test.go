package client

import (
	"bytes"
	"testing"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"

	"github.com/emldov7/evMonde--sub000/internal/dto"
)

func TestDecodeImage(t *testing.T) {
	t.Run("round trips a ticket payload", func(t *testing.T) {
		png, err := qrcode.Encode("ticket-payload-550e8400", qrcode.Medium, 256)
		assert.NoError(t, err)

		payload, err := DecodeImage(bytes.NewReader(png))
		assert.NoError(t, err)
		assert.Equal(t, "ticket-payload-550e8400", payload)
	})

	t.Run("not an image", func(t *testing.T) {
		_, err := DecodeImage(bytes.NewReader([]byte("pas une image")))
		assert.Error(t, err)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		resp dto.VerifyQRResponse
		want Verdict
	}{
		{
			name: "first scan is green",
			resp: dto.VerifyQRResponse{Valid: true, ScanStatus: dto.ScanStatusFirstScan},
			want: VerdictGreen,
		},
		{
			name: "already scanned is yellow",
			resp: dto.VerifyQRResponse{ScanStatus: dto.ScanStatusAlreadyScanned},
			want: VerdictYellow,
		},
		{
			name: "fraud is red",
			resp: dto.VerifyQRResponse{ScanStatus: dto.ScanStatusFraudDetected},
			want: VerdictRed,
		},
		{
			name: "invalid is red",
			resp: dto.VerifyQRResponse{ScanStatus: dto.ScanStatusInvalid},
			want: VerdictRed,
		},
		{
			name: "legacy server, valid flag only",
			resp: dto.VerifyQRResponse{Valid: true},
			want: VerdictGreen,
		},
		{
			name: "legacy server, alert wording",
			resp: dto.VerifyQRResponse{Message: "⚠️ ALERTE ! Ce QR code a déjà été scanné il y a 12 minutes. Possibilité de fraude !"},
			want: VerdictYellow,
		},
		{
			name: "legacy server, fraud wording",
			resp: dto.VerifyQRResponse{Message: "🚨 FRAUDE DÉTECTÉE ! Ce QR code a été scanné 3 fois. ACCÈS REFUSÉ !"},
			want: VerdictRed,
		},
		{
			name: "legacy server, anything else refused",
			resp: dto.VerifyQRResponse{Message: "❌ QR code invalide"},
			want: VerdictRed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(&tt.resp))
		})
	}
}
