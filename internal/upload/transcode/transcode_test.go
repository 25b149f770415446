package transcode

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fihircio/raikan-service/internal/config"
	"github.com/fihircio/raikan-service/internal/types/uploads"
)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 80, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeWebP(t *testing.T, data []byte) image.Image {
	t.Helper()

	img, err := webp.Decode(bytes.NewReader(data))
	require.NoError(t, err, "output must be decodable webp")
	return img
}

func TestTranscode_NormalizesLargeImage(t *testing.T) {
	tr := New(config.DefaultThumbnails())

	out, err := tr.Transcode(encodeJPEG(t, 2000, 1000), uploads.CategoryGalleryImage, "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "image/webp", out.ContentType)

	img := decodeWebP(t, out.Data)
	b := img.Bounds()
	assert.Equal(t, 1200, b.Dx())
	assert.Equal(t, 600, b.Dy())
}

func TestTranscode_NeverUpscales(t *testing.T) {
	tr := New(config.DefaultThumbnails())

	out, err := tr.Transcode(encodeJPEG(t, 640, 480), uploads.CategoryBackground, "image/jpeg")
	require.NoError(t, err)

	b := decodeWebP(t, out.Data).Bounds()
	assert.Equal(t, 640, b.Dx())
	assert.Equal(t, 480, b.Dy())
}

func TestTranscode_ThumbnailVariants(t *testing.T) {
	variants := []config.Variant{
		{Label: "small", Width: 150, Height: 150},
		{Label: "medium", Width: 300, Height: 300},
		{Label: "large", Width: 800, Height: 600},
	}
	tr := New(variants)

	out, err := tr.Transcode(encodeJPEG(t, 1600, 1200), uploads.CategoryGalleryImage, "image/jpeg")
	require.NoError(t, err)
	require.Len(t, out.Thumbnails, 3)

	for i, v := range variants {
		thumb := out.Thumbnails[i]
		assert.Equal(t, v.Label, thumb.Label)

		// Cover-cropped variants hit their exact dimensions.
		b := decodeWebP(t, thumb.Data).Bounds()
		assert.Equal(t, v.Width, b.Dx(), "variant %s width", v.Label)
		assert.Equal(t, v.Height, b.Dy(), "variant %s height", v.Label)
	}
}

func TestTranscode_PNGInput(t *testing.T) {
	tr := New(config.DefaultThumbnails())

	out, err := tr.Transcode(encodePNG(t, 500, 500), uploads.CategoryGalleryImage, "image/png")
	require.NoError(t, err)

	assert.Equal(t, "image/webp", out.ContentType)
	assert.Len(t, out.Thumbnails, 3)
}

func TestTranscode_SVGPassthrough(t *testing.T) {
	tr := New(config.DefaultThumbnails())

	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)
	out, err := tr.Transcode(svg, uploads.CategoryQRCode, "image/svg+xml")
	require.NoError(t, err)

	assert.Equal(t, "image/svg+xml", out.ContentType)
	assert.Equal(t, svg, out.Data, "svg bytes must not be touched")
	assert.Empty(t, out.Thumbnails)
}

func TestTranscode_QRCodePassthrough(t *testing.T) {
	tr := New(config.DefaultThumbnails())

	data := encodePNG(t, 300, 300)
	out, err := tr.Transcode(data, uploads.CategoryQRCode, "image/png")
	require.NoError(t, err)

	assert.Equal(t, "image/png", out.ContentType)
	assert.Equal(t, data, out.Data, "qr codes are stored at their original encoding")
	assert.Empty(t, out.Thumbnails)
}

func TestTranscode_CorruptInput(t *testing.T) {
	tr := New(config.DefaultThumbnails())

	_, err := tr.Transcode([]byte("definitely not an image"), uploads.CategoryGalleryImage, "image/jpeg")
	assert.Error(t, err)
}
