package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fihircio/raikan-service/internal/config"
	"github.com/fihircio/raikan-service/internal/http/middleware"
	"github.com/fihircio/raikan-service/internal/services/uploader"
	"github.com/fihircio/raikan-service/internal/types/uploads"
	"github.com/fihircio/raikan-service/internal/upload/transcode"
	"github.com/fihircio/raikan-service/internal/upload/validate"
	"github.com/fihircio/raikan-service/internal/utils/response"
)

type fakeStore struct{}

func (f *fakeStore) Put(ctx context.Context, key string, data []byte, contentType string) (*uploads.StoredObject, error) {
	return &uploads.StoredObject{
		Key:         key,
		URL:         "https://cdn.example.com/" + key,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func newTestHandlers() *Handlers {
	cfg := &config.Upload{
		MaxFileSize:       1 << 20,
		AllowedImageTypes: []string{"image/jpeg", "image/png", "image/webp"},
		AllowedQRTypes:    []string{"image/jpeg", "image/png", "image/webp", "image/svg+xml"},
	}
	svc := uploader.New(validate.New(cfg), transcode.New(config.DefaultThumbnails()), &fakeStore{})

	// Storage is only consulted when an invitation_id is supplied.
	return NewHandlers(svc, nil, 10)
}

func encodeJPEG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 80, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 80; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

type filePart struct {
	field    string
	filename string
	data     []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, parts []filePart) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, p := range parts {
		fw, err := w.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = fw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	ctx := context.WithValue(req.Context(), middleware.UserIDKey, "u1")
	return req.WithContext(ctx)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()

	var resp response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestUpload_Success(t *testing.T) {
	h := newTestHandlers()

	req := multipartRequest(t, "/uploads",
		map[string]string{"category": "gallery-image"},
		[]filePart{{"file", "photo.jpg", encodeJPEG(t)}})
	rec := httptest.NewRecorder()

	h.Upload()(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, response.StatusSuccess, resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, data["url"], "https://cdn.example.com/gallery-image/u1/")
	assert.Equal(t, "image/jpeg", data["content_type"])

	thumbs, ok := data["thumbnails"].(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, thumbs, 3)
}

func TestUpload_RejectsExecutable(t *testing.T) {
	h := newTestHandlers()

	exe := append([]byte{0x4D, 0x5A}, make([]byte, 32)...)
	req := multipartRequest(t, "/uploads",
		map[string]string{"category": "gallery-image"},
		[]filePart{{"file", "photo.png", exe}})
	rec := httptest.NewRecorder()

	h.Upload()(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, response.StatusError, resp.Status)
	assert.Contains(t, resp.Threats, "Executable file detected")
}

func TestUpload_RejectsUnknownCategory(t *testing.T) {
	h := newTestHandlers()

	req := multipartRequest(t, "/uploads",
		map[string]string{"category": "avatar"},
		[]filePart{{"file", "photo.jpg", encodeJPEG(t)}})
	rec := httptest.NewRecorder()

	h.Upload()(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_RequiresAuthentication(t *testing.T) {
	h := newTestHandlers()

	req := multipartRequest(t, "/uploads",
		map[string]string{"category": "gallery-image"},
		[]filePart{{"file", "photo.jpg", encodeJPEG(t)}})
	req = req.WithContext(context.Background())
	rec := httptest.NewRecorder()

	h.Upload()(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpload_RejectsOversizedFile(t *testing.T) {
	h := newTestHandlers()

	big := make([]byte, (1<<20)+1)
	copy(big, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	req := multipartRequest(t, "/uploads",
		map[string]string{"category": "gallery-image"},
		[]filePart{{"file", "huge.jpg", big}})
	rec := httptest.NewRecorder()

	h.Upload()(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Contains(t, resp.Error, "exceeds the maximum")
}

func TestUploadBatch_PartialSuccess(t *testing.T) {
	h := newTestHandlers()

	exe := append([]byte{0x4D, 0x5A}, make([]byte, 32)...)
	req := multipartRequest(t, "/uploads/batch",
		map[string]string{"category": "gallery-image"},
		[]filePart{
			{"files", "good.jpg", encodeJPEG(t)},
			{"files", "bad.png", exe},
		})
	rec := httptest.NewRecorder()

	h.UploadBatch()(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)

	uploaded, ok := data["uploads"].([]interface{})
	require.True(t, ok)
	assert.Len(t, uploaded, 1)

	errs, ok := data["errors"].([]interface{})
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "bad.png")
}

func TestUploadBatch_AllFilesRejected(t *testing.T) {
	h := newTestHandlers()

	exe := append([]byte{0x4D, 0x5A}, make([]byte, 32)...)
	req := multipartRequest(t, "/uploads/batch",
		map[string]string{"category": "gallery-image"},
		[]filePart{
			{"files", "one.png", exe},
			{"files", "two.png", exe},
		})
	rec := httptest.NewRecorder()

	h.UploadBatch()(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Contains(t, resp.Error, "all uploads failed")
}

func TestUploadBatch_TooManyFiles(t *testing.T) {
	cfg := &config.Upload{
		MaxFileSize:       1 << 20,
		AllowedImageTypes: []string{"image/jpeg"},
		AllowedQRTypes:    []string{"image/jpeg"},
	}
	svc := uploader.New(validate.New(cfg), transcode.New(config.DefaultThumbnails()), &fakeStore{})
	h := NewHandlers(svc, nil, 2)

	jpg := encodeJPEG(t)
	req := multipartRequest(t, "/uploads/batch",
		map[string]string{"category": "gallery-image"},
		[]filePart{
			{"files", "a.jpg", jpg},
			{"files", "b.jpg", jpg},
			{"files", "c.jpg", jpg},
		})
	rec := httptest.NewRecorder()

	h.UploadBatch()(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Contains(t, resp.Error, "too many files")
}
