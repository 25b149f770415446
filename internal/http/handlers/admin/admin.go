package admin

import (
	"errors"
	"net/http"

	"github.com/fihircio/raikan-service/internal/cleanup"
	"github.com/fihircio/raikan-service/internal/http/middleware"
	"github.com/fihircio/raikan-service/internal/utils/response"
)

// TriggerCleanup runs a cleanup routine on demand
// @Summary Trigger a cleanup run
// @Description Run the daily or weekly cleanup routine outside its schedule
// @Tags admin
// @Param kind path string true "Cleanup kind (daily or weekly)"
// @Success 200 {object} response.Response "Run stats"
// @Failure 400 {object} response.Response "Unknown kind"
// @Security BearerAuth
// @Router /admin/cleanup/{kind} [post]
func TriggerCleanup(job *cleanup.Job) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("user not authenticated")))
			return
		}

		stats, err := job.Trigger(r.Context(), r.PathValue("kind"))
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Cleanup run finished", stats))
	}
}
