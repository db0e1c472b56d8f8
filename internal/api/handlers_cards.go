package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ryusei2790/bissiness-card-management/internal/card"
	"github.com/ryusei2790/bissiness-card-management/internal/httpkit"
	"github.com/ryusei2790/bissiness-card-management/internal/importer"
	"github.com/ryusei2790/bissiness-card-management/internal/store"
)

// ListCards handles GET /cards?search=<q>.
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	cards, err := h.store.ListCards(r.Context(), search)
	if err != nil {
		h.logger.Error("list cards failed", "err", err)
		httpkit.Error(w, http.StatusInternalServerError, "名刺の取得に失敗しました")
		return
	}
	httpkit.JSON(w, http.StatusOK, cards)
}

// CreateCard handles POST /cards.
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var form card.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		httpkit.Error(w, http.StatusBadRequest, "リクエストの形式が不正です")
		return
	}

	if form.CompanyName == "" || form.Name == "" || form.Email == "" {
		httpkit.Error(w, http.StatusBadRequest, "会社名、名前、メールアドレスは必須です")
		return
	}
	if !importer.ValidEmail(form.Email) {
		httpkit.Error(w, http.StatusBadRequest, "有効なメールアドレスを入力してください")
		return
	}

	c, err := h.store.CreateCard(r.Context(), form, "")
	if err != nil {
		h.logger.Error("create card failed", "err", err)
		httpkit.Error(w, http.StatusInternalServerError, "名刺の作成に失敗しました")
		return
	}
	httpkit.JSON(w, http.StatusCreated, c)
}

// GetCard handles GET /cards/{id}.
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := h.store.GetCard(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		httpkit.Error(w, http.StatusNotFound, "名刺が見つかりません")
		return
	}
	if err != nil {
		h.logger.Error("get card failed", "id", id, "err", err)
		httpkit.Error(w, http.StatusInternalServerError, "名刺の取得に失敗しました")
		return
	}
	httpkit.JSON(w, http.StatusOK, c)
}

// UpdateCard handles PUT /cards/{id} with a partial body.
func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch card.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpkit.Error(w, http.StatusBadRequest, "リクエストの形式が不正です")
		return
	}

	if patch.Email != nil && !importer.ValidEmail(*patch.Email) {
		httpkit.Error(w, http.StatusBadRequest, "有効なメールアドレスを入力してください")
		return
	}

	c, err := h.store.UpdateCard(r.Context(), id, patch)
	if errors.Is(err, store.ErrNotFound) {
		httpkit.Error(w, http.StatusNotFound, "名刺が見つかりません")
		return
	}
	if err != nil {
		h.logger.Error("update card failed", "id", id, "err", err)
		httpkit.Error(w, http.StatusInternalServerError, "名刺の更新に失敗しました")
		return
	}
	httpkit.JSON(w, http.StatusOK, c)
}

// DeleteCard handles DELETE /cards/{id}.
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteCard(r.Context(), id); err != nil {
		h.logger.Error("delete card failed", "id", id, "err", err)
		httpkit.Error(w, http.StatusInternalServerError, "名刺の削除に失敗しました")
		return
	}
	httpkit.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "名刺を削除しました",
	})
}
