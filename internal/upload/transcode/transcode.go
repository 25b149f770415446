package transcode

import (
	"bytes"
	"fmt"
	"image"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/fihircio/raikan-service/internal/config"
	"github.com/fihircio/raikan-service/internal/types/uploads"
)

const (
	// Delivery images are bounded to this box; smaller images are never
	// upscaled.
	maxDimension = 1200

	deliveryQuality  = 75
	thumbnailQuality = 70

	mimeWebP = "image/webp"
	mimeSVG  = "image/svg+xml"
)

// Thumbnail is one derived rendition, cover-cropped to its exact dimensions.
type Thumbnail struct {
	Label  string
	Width  int
	Height int
	Data   []byte
}

// Output is a normalized image ready for storage.
type Output struct {
	Data        []byte
	ContentType string
	Thumbnails  []Thumbnail
}

// Transcoder normalizes raster uploads to WebP and derives thumbnail
// variants. SVG and QR-code uploads pass through untouched.
type Transcoder struct {
	variants []config.Variant
}

func New(variants []config.Variant) *Transcoder {
	return &Transcoder{variants: variants}
}

// Transcode re-encodes the image for the given category. detectedMime must be
// the content-sniffed type from validation.
func (t *Transcoder) Transcode(data []byte, category uploads.Category, detectedMime string) (*Output, error) {
	// SVG is the one vector format in the pipeline; re-encoding it would
	// rasterize it, so it is stored as-is and never thumbnailed.
	if detectedMime == mimeSVG {
		return &Output{Data: data, ContentType: detectedMime}, nil
	}

	// QR codes are stored at their original encoding.
	if !category.IsRaster() {
		return &Output{Data: data, ContentType: detectedMime}, nil
	}

	// Decode once; EXIF orientation is applied so stored pixels are upright
	// and all other metadata is dropped by re-encoding.
	original, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	delivery := fitWithin(original, maxDimension, maxDimension)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, delivery, &webp.Options{Quality: deliveryQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode webp: %w", err)
	}

	// Thumbnails are cut from the original, not the resized delivery image,
	// so small variants keep as much detail as the source allows.
	thumbnails := make([]Thumbnail, 0, len(t.variants))
	for _, v := range t.variants {
		cropped := imaging.Fill(original, v.Width, v.Height, imaging.Center, imaging.Lanczos)

		var tb bytes.Buffer
		if err := webp.Encode(&tb, cropped, &webp.Options{Quality: thumbnailQuality}); err != nil {
			return nil, fmt.Errorf("failed to generate thumbnail %s: %w", v.Label, err)
		}
		thumbnails = append(thumbnails, Thumbnail{
			Label:  v.Label,
			Width:  v.Width,
			Height: v.Height,
			Data:   tb.Bytes(),
		})
	}

	return &Output{
		Data:        buf.Bytes(),
		ContentType: mimeWebP,
		Thumbnails:  thumbnails,
	}, nil
}

// fitWithin scales the image down to fit the box, preserving aspect ratio.
// Images already inside the box are returned unchanged.
func fitWithin(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return img
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}
