package gallery

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/fihircio/raikan-service/internal/cache"
	"github.com/fihircio/raikan-service/internal/http/middleware"
	"github.com/fihircio/raikan-service/internal/storage"
	"github.com/fihircio/raikan-service/internal/types"
	"github.com/fihircio/raikan-service/internal/utils/response"
)

type Handlers struct {
	storage storage.Storage
	cache   *cache.CacheService
}

func NewHandlers(storage storage.Storage, cacheService *cache.CacheService) *Handlers {
	return &Handlers{storage: storage, cache: cacheService}
}

// Add records an already-uploaded image in an invitation's gallery
// @Summary Add a gallery image
// @Tags gallery
// @Accept json
// @Param id path string true "Invitation ID"
// @Param image body types.GalleryImageRequest true "Image URL and caption"
// @Success 201 {object} map[string]string "Image added"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 404 {object} response.Response "Not found"
// @Security BearerAuth
// @Router /invitations/{id}/gallery [post]
func (h *Handlers) Add() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, ok := h.ownedInvitation(w, r, r.PathValue("id"))
		if !ok {
			return
		}

		var req types.GalleryImageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid request body")))
			return
		}

		validate := validator.New()
		if err := validate.Struct(req); err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		imageID, err := h.storage.AddGalleryImage(inv.ID, req.ImageURL, req.Caption)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		h.cache.InvalidateInvitation(r.Context(), inv.Slug, inv.ID)
		slog.Info("Gallery image added", slog.String("invitation_id", inv.ID), slog.String("image_id", imageID))

		response.WriteJSON(w, http.StatusCreated, map[string]string{"id": imageID})
	}
}

// List returns an invitation's gallery
// @Summary List gallery images
// @Tags gallery
// @Param id path string true "Invitation ID"
// @Success 200 {object} response.Response "Images fetched"
// @Security BearerAuth
// @Router /invitations/{id}/gallery [get]
func (h *Handlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, ok := h.ownedInvitation(w, r, r.PathValue("id"))
		if !ok {
			return
		}

		images, err := h.storage.ListGalleryImages(inv.ID)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Gallery images fetched successfully", images))
	}
}

// Delete removes one gallery row. The stored object itself is left for the
// orphan sweep.
// @Summary Delete a gallery image
// @Tags gallery
// @Param gid path string true "Gallery image ID"
// @Success 200 {object} response.Response "Image deleted"
// @Failure 404 {object} response.Response "Not found"
// @Security BearerAuth
// @Router /gallery/{gid} [delete]
func (h *Handlers) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gid := r.PathValue("gid")
		if gid == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("gallery image ID is required")))
			return
		}

		img, err := h.storage.GetGalleryImage(gid)
		if err != nil {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("gallery image not found")))
			return
		}

		inv, ok := h.ownedInvitation(w, r, img.InvitationID)
		if !ok {
			return
		}

		if err := h.storage.DeleteGalleryImage(gid); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("gallery image not found")))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		h.cache.InvalidateInvitation(r.Context(), inv.Slug, inv.ID)

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Gallery image deleted successfully", nil))
	}
}

func (h *Handlers) ownedInvitation(w http.ResponseWriter, r *http.Request, invitationID string) (*types.Invitation, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
		return nil, false
	}

	if invitationID == "" {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invitation ID is required")))
		return nil, false
	}

	inv, err := h.storage.GetInvitationByID(invitationID)
	if err != nil {
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("invitation not found")))
		return nil, false
	}

	if inv.OwnerID != userID {
		response.WriteJSON(w, http.StatusForbidden, response.GeneralError(errors.New("access denied")))
		return nil, false
	}

	return inv, true
}
