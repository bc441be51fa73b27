// Package flyertest reads rendered flyers back in tests.
package flyertest

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/flyer"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Image decodes the artifact's PNG.
func Image(t testing.TB, a flyer.Artifact) image.Image {
	t.Helper()

	img, err := png.Decode(bytes.NewReader(a.PNG))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return img
}

// DecodeQR scans the QR glyph inside a.QRBounds and returns its text.
func DecodeQR(t testing.TB, a flyer.Artifact) string {
	t.Helper()

	img := Image(t, a)
	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		t.Fatalf("png image %T cannot be cropped", img)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(sub.SubImage(a.QRBounds))
	if err != nil {
		t.Fatalf("qr bitmap: %v", err)
	}
	res, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		t.Fatalf("qr decode: %v", err)
	}
	return res.GetText()
}
