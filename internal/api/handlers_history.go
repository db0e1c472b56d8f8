package api

import (
	"net/http"
	"strconv"

	"github.com/ryusei2790/bissiness-card-management/internal/card"
	"github.com/ryusei2790/bissiness-card-management/internal/httpkit"
)

// ListHistory handles GET /history?page&limit.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	page, okPage := queryInt(r, "page", 1)
	limit, okLimit := queryInt(r, "limit", 20)
	if !okPage || !okLimit || page < 1 || limit < 1 || limit > 100 {
		httpkit.Error(w, http.StatusBadRequest, "無効なページネーションパラメータです")
		return
	}

	history, total, err := h.store.ListHistory(r.Context(), page, limit)
	if err != nil {
		h.logger.Error("list history failed", "err", err)
		httpkit.Error(w, http.StatusInternalServerError, "送信履歴の取得に失敗しました")
		return
	}
	if history == nil {
		history = []card.MailHistory{}
	}

	totalPages := (total + limit - 1) / limit

	httpkit.JSON(w, http.StatusOK, map[string]any{
		"history":    history,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": totalPages,
	})
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent. The second return is false on a malformed value.
func queryInt(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
