package httpapi

import "net/http"

// HandleHealth probes the store connection
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeContext(r)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Error().Err(err).Msg("health check failed")
		writeJSON(w, http.StatusInternalServerError, HealthResponse{
			Status: "Error",
			Error:  err.Error(),
		})
		return
	}

	h.logger.Debug().Msg("health check")

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "OK",
		Database: "connected",
	})
}

// HandleCount returns the number of stored songs
func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeContext(r)
	defer cancel()

	n, err := h.store.Count(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to count songs")
		writeError(w, http.StatusInternalServerError, "failed to count songs", "STORE_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}
