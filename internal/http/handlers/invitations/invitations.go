package invitations

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fihircio/raikan-service/internal/cache"
	"github.com/fihircio/raikan-service/internal/cleanup"
	"github.com/fihircio/raikan-service/internal/events"
	"github.com/fihircio/raikan-service/internal/http/middleware"
	"github.com/fihircio/raikan-service/internal/storage"
	"github.com/fihircio/raikan-service/internal/types"
	"github.com/fihircio/raikan-service/internal/utils/response"
)

type Handlers struct {
	storage   storage.Storage
	cache     *cache.CacheService
	cleanup   *cleanup.Job
	publisher events.Publisher
}

func NewHandlers(storage storage.Storage, cacheService *cache.CacheService, cleanupJob *cleanup.Job, publisher events.Publisher) *Handlers {
	return &Handlers{
		storage:   storage,
		cache:     cacheService,
		cleanup:   cleanupJob,
		publisher: publisher,
	}
}

// Create handles creating a new invitation
// @Summary Create an invitation
// @Tags invitations
// @Accept json
// @Produce json
// @Param invitation body types.InvitationCreateRequest true "Invitation details"
// @Success 201 {object} map[string]string "Invitation created"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Security BearerAuth
// @Router /invitations [post]
func (h *Handlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		var req types.InvitationCreateRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("request body cannot be empty")))
			return
		} else if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
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

		slug := newSlug()
		invitationID, err := h.storage.CreateInvitation(userID, slug, &req)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}
		slog.Info("Invitation created", slog.String("invitation_id", invitationID), slog.String("owner_id", userID))

		response.WriteJSON(w, http.StatusCreated, map[string]string{"id": invitationID, "slug": slug})
	}
}

// List returns the authenticated user's invitations
// @Summary List own invitations
// @Tags invitations
// @Produce json
// @Success 200 {object} response.Response "Invitations fetched"
// @Security BearerAuth
// @Router /invitations [get]
func (h *Handlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		invitations, err := h.storage.ListInvitationsByOwner(userID)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Invitations fetched successfully", invitations))
	}
}

// Get returns one invitation owned by the authenticated user
// @Summary Get an invitation
// @Tags invitations
// @Param id path string true "Invitation ID"
// @Success 200 {object} response.Response "Invitation fetched"
// @Failure 404 {object} response.Response "Not found"
// @Security BearerAuth
// @Router /invitations/{id} [get]
func (h *Handlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, ok := h.ownedInvitation(w, r)
		if !ok {
			return
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Invitation fetched successfully", inv))
	}
}

// Update applies a partial update to an invitation
// @Summary Update an invitation
// @Description Update event details, settings (background image), money-gift details or publish state
// @Tags invitations
// @Accept json
// @Param id path string true "Invitation ID"
// @Param invitation body types.InvitationUpdateRequest true "Fields to update"
// @Success 200 {object} response.Response "Invitation updated"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 404 {object} response.Response "Not found"
// @Security BearerAuth
// @Router /invitations/{id} [patch]
func (h *Handlers) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, ok := h.ownedInvitation(w, r)
		if !ok {
			return
		}

		var req types.InvitationUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid request body")))
			return
		}

		if err := h.storage.UpdateInvitation(inv.ID, &req); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("invitation not found")))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		h.cache.InvalidateInvitation(r.Context(), inv.Slug, inv.ID)

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Invitation updated successfully", nil))
	}
}

// Delete removes an invitation, its rows and (best effort) its stored files
// @Summary Delete an invitation
// @Tags invitations
// @Param id path string true "Invitation ID"
// @Success 200 {object} response.Response "Invitation deleted"
// @Failure 404 {object} response.Response "Not found"
// @Security BearerAuth
// @Router /invitations/{id} [delete]
func (h *Handlers) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, ok := h.ownedInvitation(w, r)
		if !ok {
			return
		}

		// Purge stored objects before the rows go away; the row URLs are the
		// only pointers to them. A partial purge leaves orphans for the sweep.
		succeeded, failed, err := h.cleanup.DeleteInvitationFiles(r.Context(), inv.ID)
		if err != nil {
			slog.Error("failed to purge invitation files",
				slog.String("invitation_id", inv.ID),
				slog.String("error", err.Error()))
		} else if failed > 0 {
			slog.Warn("some invitation files were not deleted",
				slog.String("invitation_id", inv.ID),
				slog.Int("succeeded", succeeded),
				slog.Int("failed", failed))
		}

		if err := h.storage.DeleteInvitation(inv.ID); err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		h.cache.InvalidateInvitation(r.Context(), inv.Slug, inv.ID)

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Invitation deleted successfully", nil))
	}
}

// PublicView serves a published invitation to guests
// @Summary View a published invitation
// @Tags public
// @Param slug path string true "Invitation slug"
// @Success 200 {object} response.Response "Invitation"
// @Failure 404 {object} response.Response "Not found"
// @Router /i/{slug} [get]
func (h *Handlers) PublicView() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("slug")
		if slug == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("slug is required")))
			return
		}

		inv, err := h.cache.GetPublishedInvitation(r.Context(), slug)
		if err != nil || !inv.Published {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("invitation not found")))
			return
		}

		gallery, err := h.cache.GetGallery(r.Context(), inv.ID)
		if err != nil {
			slog.Error("failed to load gallery", slog.String("invitation_id", inv.ID), slog.String("error", err.Error()))
			gallery = nil
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Invitation fetched successfully", map[string]interface{}{
			"invitation": inv,
			"gallery":    gallery,
		}))
	}
}

// CreateRSVP records a guest response on a published invitation
// @Summary RSVP to an invitation
// @Tags public
// @Accept json
// @Param slug path string true "Invitation slug"
// @Param rsvp body types.RSVPRequest true "Guest response"
// @Success 201 {object} response.Response "RSVP recorded"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 404 {object} response.Response "Not found"
// @Router /i/{slug}/rsvp [post]
func (h *Handlers) CreateRSVP() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("slug")

		inv, err := h.storage.GetInvitationBySlug(slug)
		if err != nil || !inv.Published {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("invitation not found")))
			return
		}

		var req types.RSVPRequest
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

		rsvp, err := h.storage.CreateRSVP(inv.ID, &req)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		if err := h.publisher.PublishRSVPCreated(inv.OwnerID, rsvp); err != nil {
			slog.Error("failed to publish rsvp event", slog.String("error", err.Error()))
		}

		response.WriteJSON(w, http.StatusCreated, response.RequestOK("RSVP recorded successfully", rsvp))
	}
}

// ListRSVPs returns the guest responses for an owned invitation
// @Summary List RSVPs
// @Tags invitations
// @Param id path string true "Invitation ID"
// @Success 200 {object} response.Response "RSVPs fetched"
// @Security BearerAuth
// @Router /invitations/{id}/rsvps [get]
func (h *Handlers) ListRSVPs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, ok := h.ownedInvitation(w, r)
		if !ok {
			return
		}

		rsvps, err := h.storage.ListRSVPs(inv.ID)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("RSVPs fetched successfully", rsvps))
	}
}

// ownedInvitation loads the path invitation and checks the requester owns it.
func (h *Handlers) ownedInvitation(w http.ResponseWriter, r *http.Request) (*types.Invitation, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
		return nil, false
	}

	id := r.PathValue("id")
	if id == "" {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invitation ID is required")))
		return nil, false
	}

	inv, err := h.storage.GetInvitationByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("invitation not found")))
			return nil, false
		}
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
		return nil, false
	}

	if inv.OwnerID != userID {
		response.WriteJSON(w, http.StatusForbidden, response.GeneralError(errors.New("access denied")))
		return nil, false
	}

	return inv, true
}

func newSlug() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:10]
}
