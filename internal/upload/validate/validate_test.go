package validate

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/fihircio/raikan-service/internal/config"
	"github.com/fihircio/raikan-service/internal/types/uploads"
)

func testConfig() *config.Upload {
	return &config.Upload{
		MaxFileSize:       1 << 20,
		AllowedImageTypes: []string{"image/jpeg", "image/png", "image/webp"},
		AllowedQRTypes:    []string{"image/jpeg", "image/png", "image/webp", "image/svg+xml"},
	}
}

// encodeJPEG produces a real JPEG so content sniffing sees a genuine image.
func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

const svgSample = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="120" height="120"><rect width="120" height="120"/></svg>`

func TestValidate_AcceptsJPEG(t *testing.T) {
	v := New(testConfig())

	data := encodeJPEG(t, 40, 30)
	res, err := v.Validate(data, uploads.CategoryGalleryImage)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.DetectedMime != "image/jpeg" {
		t.Fatalf("Expected image/jpeg, got %s", res.DetectedMime)
	}
	if res.Size != int64(len(data)) {
		t.Fatalf("Expected size %d, got %d", len(data), res.Size)
	}
}

func TestValidate_RejectsEmptyFile(t *testing.T) {
	v := New(testConfig())

	_, err := v.Validate(nil, uploads.CategoryGalleryImage)
	if err == nil {
		t.Fatal("Expected error for empty file")
	}
}

func TestValidate_RejectsOversizedFile(t *testing.T) {
	cfg := testConfig()
	cfg.MaxFileSize = 64
	v := New(cfg)

	_, err := v.Validate(encodeJPEG(t, 40, 30), uploads.CategoryGalleryImage)
	if err == nil {
		t.Fatal("Expected error for oversized file")
	}
	if !strings.Contains(err.Error(), "exceeds the maximum") {
		t.Fatalf("Unexpected error message: %v", err)
	}
}

func TestValidate_RejectsDisallowedType(t *testing.T) {
	v := New(testConfig())

	// Sniffs as text/plain regardless of what the client claims.
	_, err := v.Validate([]byte("#!/bin/sh\nrm -rf /\n"), uploads.CategoryGalleryImage)
	if err == nil {
		t.Fatal("Expected error for disallowed content type")
	}

	var ve *Error
	if !errors.As(err, &ve) {
		t.Fatalf("Expected a validation error, got %T", err)
	}
}

func TestValidate_SVGOnlyForQRCodes(t *testing.T) {
	v := New(testConfig())

	if _, err := v.Validate([]byte(svgSample), uploads.CategoryGalleryImage); err == nil {
		t.Fatal("Expected SVG to be rejected for gallery images")
	}

	res, err := v.Validate([]byte(svgSample), uploads.CategoryQRCode)
	if err != nil {
		t.Fatalf("Unexpected error for QR SVG: %v", err)
	}
	if res.DetectedMime != "image/svg+xml" {
		t.Fatalf("Expected image/svg+xml, got %s", res.DetectedMime)
	}
}

func TestValidate_UnknownCategory(t *testing.T) {
	v := New(testConfig())

	_, err := v.Validate(encodeJPEG(t, 10, 10), uploads.Category("avatar"))
	if err == nil {
		t.Fatal("Expected error for unknown category")
	}
}
