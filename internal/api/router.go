// Package api implements the HTTP handlers for the card service. Each
// handler is a single parse → validate → invoke → encode pipeline; no
// handler holds state across requests.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ryusei2790/bissiness-card-management/internal/card"
	"github.com/ryusei2790/bissiness-card-management/internal/gmail"
	"github.com/ryusei2790/bissiness-card-management/internal/httpkit"
	"github.com/ryusei2790/bissiness-card-management/internal/importer"
	"github.com/ryusei2790/bissiness-card-management/internal/notion"
	"github.com/ryusei2790/bissiness-card-management/internal/store"
)

// SyncRunner runs one workspace-database reconciliation.
type SyncRunner interface {
	Sync(ctx context.Context) (*notion.SyncResult, error)
}

// MailDispatcher sends one bulk dispatch.
type MailDispatcher interface {
	Dispatch(ctx context.Context, recipients []card.Recipient, subject, body string) *gmail.DispatchResult
}

// Handler holds all API handler state.
type Handler struct {
	store      store.Store
	importer   *importer.Importer
	syncer     SyncRunner
	dispatcher MailDispatcher
	logger     *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(s store.Store, imp *importer.Importer, sync SyncRunner, disp MailDispatcher, logger *slog.Logger) *Handler {
	return &Handler{
		store:      s,
		importer:   imp,
		syncer:     sync,
		dispatcher: disp,
		logger:     logger,
	}
}

// Routes mounts all service routes.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/cards", func(r chi.Router) {
		r.Get("/", h.ListCards)
		r.Post("/", h.CreateCard)
		r.Post("/import", h.ImportCSV)
		r.Get("/{id}", h.GetCard)
		r.Put("/{id}", h.UpdateCard)
		r.Delete("/{id}", h.DeleteCard)
	})

	r.Post("/notion/sync", h.SyncNotion)
	r.Get("/history", h.ListHistory)
	r.Post("/mail/send", h.SendMail)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpkit.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
