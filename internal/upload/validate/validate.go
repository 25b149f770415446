package validate

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fihircio/raikan-service/internal/config"
	"github.com/fihircio/raikan-service/internal/types/uploads"
)

// Error marks a rejection by the validator so handlers can map it to a 400.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func errorf(format string, args ...interface{}) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// Result describes an accepted file.
type Result struct {
	// DetectedMime is sniffed from the file content, never taken from the
	// client-supplied filename or header.
	DetectedMime string
	Size         int64
}

// Validator enforces size limits and per-category MIME allow-lists.
type Validator struct {
	maxFileSize int64
	allowed     map[uploads.Category][]string
}

func New(cfg *config.Upload) *Validator {
	return &Validator{
		maxFileSize: cfg.MaxFileSize,
		allowed: map[uploads.Category][]string{
			uploads.CategoryGalleryImage: cfg.AllowedImageTypes,
			uploads.CategoryBackground:   cfg.AllowedImageTypes,
			uploads.CategoryQRCode:       cfg.AllowedQRTypes,
		},
	}
}

// Validate inspects the raw bytes and returns the sniffed MIME type. It has
// no side effects.
func (v *Validator) Validate(data []byte, category uploads.Category) (*Result, error) {
	size := int64(len(data))
	if size == 0 {
		return nil, errorf("file is empty")
	}
	if size > v.maxFileSize {
		return nil, errorf("file size %d exceeds the maximum of %d bytes", size, v.maxFileSize)
	}

	allowed, ok := v.allowed[category]
	if !ok {
		return nil, errorf("unknown upload category %q", category)
	}

	detected := mimetype.Detect(data)
	for _, mime := range allowed {
		if detected.Is(mime) {
			return &Result{DetectedMime: mime, Size: size}, nil
		}
	}

	return nil, errorf("content type %s is not allowed for category %s", detected.String(), category)
}
