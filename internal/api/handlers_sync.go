package api

import (
	"net/http"

	"github.com/ryusei2790/bissiness-card-management/internal/httpkit"
)

// SyncNotion handles POST /notion/sync.
func (h *Handler) SyncNotion(w http.ResponseWriter, r *http.Request) {
	res, err := h.syncer.Sync(r.Context())
	if err != nil {
		h.logger.Error("notion sync failed", "err", err)
		httpkit.JSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Notion同期に失敗しました",
		})
		return
	}
	httpkit.JSON(w, http.StatusOK, res)
}
