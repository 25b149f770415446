package uploads

import "fmt"

// Category classifies an upload and drives MIME allow-lists and storage key
// prefixes.
type Category string

const (
	CategoryGalleryImage Category = "gallery-image"
	CategoryQRCode       Category = "qr-code"
	CategoryBackground   Category = "background"
)

// ParseCategory validates a client-supplied category string.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryGalleryImage, CategoryQRCode, CategoryBackground:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown upload category %q", s)
}

// IsRaster reports whether objects in this category are re-encoded and
// thumbnailed. QR codes are stored at their original encoding.
func (c Category) IsRaster() bool {
	return c == CategoryGalleryImage || c == CategoryBackground
}

// StoredObject describes one blob persisted in the object store.
type StoredObject struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Result is returned to the caller after a successful upload. ContentType and
// Size describe the file as received, before any re-encoding. Thumbnails maps
// variant labels (small/medium/large) to public URLs and is absent for
// categories that are not thumbnailed.
type Result struct {
	URL         string            `json:"url"`
	Key         string            `json:"key"`
	ContentType string            `json:"content_type"`
	Size        int64             `json:"size"`
	Thumbnails  map[string]string `json:"thumbnails,omitempty"`
}
