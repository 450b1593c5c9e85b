package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func createTestJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int, c color.Color) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	return img
}

func TestNormalizeJPEG(t *testing.T) {
	result, err := Normalize(7, bytes.NewReader(createTestJPEG(100, 60)))
	if err != nil {
		t.Fatalf("Normalize JPEG: %v", err)
	}
	if result.ItemID != 7 {
		t.Errorf("expected item id 7, got %d", result.ItemID)
	}
	if result.Mime != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", result.Mime)
	}
	if result.Width != 100 || result.Height != 60 {
		t.Errorf("expected 100x60, got %dx%d", result.Width, result.Height)
	}
	decodeJPEG(t, result.Data)
}

func TestNormalizePNG(t *testing.T) {
	result, err := Normalize(1, bytes.NewReader(createTestPNG(100, 100, color.RGBA{0, 0, 255, 255})))
	if err != nil {
		t.Fatalf("Normalize PNG: %v", err)
	}
	if result.Mime != "image/jpeg" {
		t.Errorf("expected image/jpeg (always outputs JPEG), got %s", result.Mime)
	}
}

func TestNormalizeFlattensTransparency(t *testing.T) {
	result, err := Normalize(1, bytes.NewReader(createTestPNG(20, 20, color.NRGBA{0, 0, 0, 0})))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	r, g, b, _ := decodeJPEG(t, result.Data).At(10, 10).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("expected transparent pixels to become white, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestNormalizeDownscales(t *testing.T) {
	result, err := Normalize(1, bytes.NewReader(createTestJPEG(2048, 1024)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if result.Width != MaxDimension || result.Height != MaxDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", MaxDimension, MaxDimension/2, result.Width, result.Height)
	}

	bounds := decodeJPEG(t, result.Data).Bounds()
	if bounds.Dx() != result.Width || bounds.Dy() != result.Height {
		t.Errorf("reported size %dx%d does not match encoded %dx%d", result.Width, result.Height, bounds.Dx(), bounds.Dy())
	}
}

func TestNormalizeTallImage(t *testing.T) {
	result, err := Normalize(1, bytes.NewReader(createTestPNG(500, 3000, color.Black)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if result.Height != MaxDimension {
		t.Errorf("expected height %d, got %d", MaxDimension, result.Height)
	}
	if result.Width > MaxDimension {
		t.Errorf("width %d exceeds max", result.Width)
	}
}

func TestNormalizeRejectsUnsupported(t *testing.T) {
	_, err := Normalize(1, bytes.NewReader([]byte("GIF89a not really an image")))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}

	_, err = Normalize(1, bytes.NewReader([]byte("plain text")))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestNormalizeRejectsTruncated(t *testing.T) {
	data := createTestJPEG(50, 50)
	_, err := Normalize(1, bytes.NewReader(data[:20]))
	if err == nil {
		t.Error("expected error for truncated image")
	}
}

func TestNormalizeRejectsOversized(t *testing.T) {
	data := make([]byte, MaxUploadBytes+10)
	copy(data, createTestJPEG(10, 10))

	_, err := Normalize(1, bytes.NewReader(data))
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{100, 100, 1024, 100, 100},
		{2048, 1024, 1024, 1024, 512},
		{1024, 4096, 1024, 256, 1024},
		{5000, 1, 1024, 1024, 1},
	}
	for _, tt := range tests {
		w, h := scaledSize(tt.w, tt.h, tt.max)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("scaledSize(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.max, w, h, tt.wantW, tt.wantH)
		}
	}
}
