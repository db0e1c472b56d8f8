package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ryusei2790/bissiness-card-management/internal/card"
	"github.com/ryusei2790/bissiness-card-management/internal/httpkit"
	"github.com/ryusei2790/bissiness-card-management/internal/store"
)

type sendMailRequest struct {
	CardIDs []string `json:"cardIds"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// SendMail handles POST /mail/send: resolves recipients, dispatches
// sequentially, and records the attempt in the history collection.
func (h *Handler) SendMail(w http.ResponseWriter, r *http.Request) {
	var req sendMailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpkit.Error(w, http.StatusBadRequest, "リクエストの形式が不正です")
		return
	}

	if len(req.CardIDs) == 0 {
		httpkit.Error(w, http.StatusBadRequest, "宛先を選択してください")
		return
	}
	if req.Subject == "" || req.Body == "" {
		httpkit.Error(w, http.StatusBadRequest, "件名と本文を入力してください")
		return
	}

	// Denormalize each card into a send-time snapshot. Unknown ids are
	// reported back, not fatal.
	var recipients []card.Recipient
	var notFoundIDs []string
	for _, id := range req.CardIDs {
		c, err := h.store.GetCard(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			notFoundIDs = append(notFoundIDs, id)
			continue
		}
		if err != nil {
			h.logger.Error("resolve recipient failed", "id", id, "err", err)
			httpkit.Error(w, http.StatusInternalServerError, "名刺の取得に失敗しました")
			return
		}
		recipients = append(recipients, card.Recipient{
			CardID:      id,
			Email:       c.Email,
			Name:        c.Name,
			CompanyName: c.CompanyName,
		})
	}

	if len(recipients) == 0 {
		httpkit.Error(w, http.StatusBadRequest, "有効な宛先が見つかりません")
		return
	}

	result := h.dispatcher.Dispatch(r.Context(), recipients, req.Subject, req.Body)

	h.saveHistory(r, recipients, req.Subject, req.Body, result.Success, result.FailedEmails)

	message := fmt.Sprintf("%d件のメールを送信しました", result.SentCount)
	if !result.Success {
		message = "メールの送信に失敗しました"
	}

	failed := result.FailedEmails
	if failed == nil {
		failed = []string{}
	}
	resp := map[string]any{
		"success":      result.Success,
		"sentCount":    result.SentCount,
		"failedEmails": failed,
		"message":      message,
	}
	if len(notFoundIDs) > 0 {
		resp["notFoundIds"] = notFoundIDs
	}
	httpkit.JSON(w, http.StatusOK, resp)
}

// saveHistory records the dispatch attempt. Persistence failure is logged
// and swallowed so the caller still sees the send result.
func (h *Handler) saveHistory(r *http.Request, recipients []card.Recipient, subject, body string, success bool, failedEmails []string) {
	status := card.HistoryStatusSuccess
	if !success {
		status = card.HistoryStatusFailed
	}

	var sendErrors []card.SendError
	for _, email := range failedEmails {
		sendErrors = append(sendErrors, card.SendError{Email: email, Message: "送信失敗"})
	}

	entry := card.MailHistory{
		Recipients: recipients,
		Subject:    subject,
		Body:       body,
		Status:     status,
		Errors:     sendErrors,
	}
	if _, err := h.store.SaveHistory(r.Context(), entry); err != nil {
		h.logger.Error("saving mail history failed", "err", err)
	}
}
