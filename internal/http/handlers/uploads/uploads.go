package uploads

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/fihircio/raikan-service/internal/http/middleware"
	"github.com/fihircio/raikan-service/internal/services/uploader"
	"github.com/fihircio/raikan-service/internal/storage"
	uploadtypes "github.com/fihircio/raikan-service/internal/types/uploads"
	"github.com/fihircio/raikan-service/internal/upload/security"
	"github.com/fihircio/raikan-service/internal/upload/validate"
	"github.com/fihircio/raikan-service/internal/utils/response"
)

// multipart parsing keeps this much in memory before spilling to disk
const parseMemoryLimit = 32 << 20

type Handlers struct {
	uploader      *uploader.Service
	storage       storage.Storage
	maxBatchFiles int
}

func NewHandlers(svc *uploader.Service, storage storage.Storage, maxBatchFiles int) *Handlers {
	return &Handlers{
		uploader:      svc,
		storage:       storage,
		maxBatchFiles: maxBatchFiles,
	}
}

// BatchResult is the payload for a batch upload with partial failures.
type BatchResult struct {
	Uploads []*uploadtypes.Result `json:"uploads"`
	Errors  []string              `json:"errors,omitempty"`
}

// Upload handles a single file upload
// @Summary Upload a file
// @Description Upload one file; images are normalized to WebP and thumbnailed
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param category formData string true "Upload category (gallery-image, qr-code, background)"
// @Param invitation_id formData string false "Owning invitation"
// @Success 201 {object} response.Response "File uploaded successfully"
// @Failure 400 {object} response.Response "Validation or security rejection"
// @Failure 429 {object} response.Response "Rate limit exceeded"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /uploads [post]
func (h *Handlers) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		if err := r.ParseMultipartForm(parseMemoryLimit); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid multipart form")))
			return
		}

		category, err := uploadtypes.ParseCategory(r.FormValue("category"))
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("form field 'file' is required")))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("failed to read uploaded file")))
			return
		}

		filename := security.Sanitize(header.Filename)
		if !h.scanPassed(w, r, data, header.Filename, userID) {
			return
		}

		invitationID := r.FormValue("invitation_id")
		if invitationID != "" && !h.ownsInvitation(w, invitationID, userID) {
			return
		}

		result, err := h.uploader.Upload(r.Context(), data, category, userID)
		if err != nil {
			writeUploadError(w, err)
			return
		}

		// A gallery upload tied to an invitation gets its reference recorded
		// right away; other categories are persisted by the invitation PATCH.
		if invitationID != "" && category == uploadtypes.CategoryGalleryImage {
			if _, err := h.storage.AddGalleryImage(invitationID, result.URL, ""); err != nil {
				slog.Error("failed to record gallery image",
					slog.String("invitation_id", invitationID),
					slog.String("key", result.Key),
					slog.String("error", err.Error()))
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to record uploaded file")))
				return
			}
		}

		slog.Info("file uploaded",
			slog.String("filename", filename),
			slog.String("category", string(category)),
			slog.String("key", result.Key),
			slog.Int64("size", result.Size),
			slog.String("user_id", userID))

		response.WriteJSON(w, http.StatusCreated, response.RequestOK("File uploaded successfully", result))
	}
}

// UploadBatch handles a multi-file upload
// @Summary Upload multiple files
// @Description Upload up to 10 files; files that fail are reported individually
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files to upload"
// @Param category formData string true "Upload category"
// @Success 201 {object} response.Response "Batch processed"
// @Failure 400 {object} response.Response "Bad request or every file failed"
// @Failure 429 {object} response.Response "Rate limit exceeded"
// @Security BearerAuth
// @Router /uploads/batch [post]
func (h *Handlers) UploadBatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		if err := r.ParseMultipartForm(parseMemoryLimit); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid multipart form")))
			return
		}

		category, err := uploadtypes.ParseCategory(r.FormValue("category"))
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		headers := r.MultipartForm.File["files"]
		if len(headers) == 0 {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("form field 'files' is required")))
			return
		}
		if len(headers) > h.maxBatchFiles {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(
				errors.New("too many files in batch")))
			return
		}

		var files []uploader.File
		var failures []string
		for _, hdr := range headers {
			f, err := hdr.Open()
			if err != nil {
				failures = append(failures, hdr.Filename+": failed to read file")
				continue
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				failures = append(failures, hdr.Filename+": failed to read file")
				continue
			}

			verdict := security.Scan(data, hdr.Filename)
			if !verdict.IsSafe {
				slog.Warn("batch upload: file rejected by security scan",
					slog.String("filename", hdr.Filename),
					slog.Int("size", len(data)),
					slog.String("ip", middleware.ClientIP(r)),
					slog.String("user_id", userID),
					slog.Any("threats", verdict.Threats))
				failures = append(failures, hdr.Filename+": rejected by security scan")
				continue
			}

			files = append(files, uploader.File{Name: security.Sanitize(hdr.Filename), Data: data})
		}

		var results []*uploadtypes.Result
		if len(files) > 0 {
			var uploadFailures []string
			results, uploadFailures, _ = h.uploader.UploadMany(r.Context(), files, category, userID)
			failures = append(failures, uploadFailures...)
		}

		if len(results) == 0 {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(
				errors.New("all uploads failed")))
			return
		}

		response.WriteJSON(w, http.StatusCreated, response.RequestOK("Batch processed", BatchResult{
			Uploads: results,
			Errors:  failures,
		}))
	}
}

// scanPassed runs the security scan and writes the rejection when it fails.
func (h *Handlers) scanPassed(w http.ResponseWriter, r *http.Request, data []byte, filename, userID string) bool {
	verdict := security.Scan(data, filename)
	if verdict.IsSafe {
		return true
	}

	slog.Warn("upload rejected by security scan",
		slog.String("filename", filename),
		slog.Int("size", len(data)),
		slog.String("ip", middleware.ClientIP(r)),
		slog.String("user_id", userID),
		slog.Any("threats", verdict.Threats),
		slog.Int("confidence", verdict.Confidence))

	response.WriteJSON(w, http.StatusBadRequest, response.ScanRejected(verdict.Threats))
	return false
}

func (h *Handlers) ownsInvitation(w http.ResponseWriter, invitationID, userID string) bool {
	inv, err := h.storage.GetInvitationByID(invitationID)
	if err != nil {
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("invitation not found")))
		return false
	}
	if inv.OwnerID != userID {
		response.WriteJSON(w, http.StatusForbidden, response.GeneralError(errors.New("access denied")))
		return false
	}
	return true
}

func writeUploadError(w http.ResponseWriter, err error) {
	var ve *validate.Error
	if errors.As(err, &ve) {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return
	}
	response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
}
