// Package store defines the persistence contracts for cards and mail
// history, with an in-memory implementation for tests and development and a
// Firestore implementation for production.
package store

import (
	"context"
	"errors"

	"github.com/ryusei2790/bissiness-card-management/internal/card"
)

// ErrNotFound is returned when a card or history entry does not exist.
var ErrNotFound = errors.New("not found")

// CardStore provides CRUD and unique-field lookups over cards.
type CardStore interface {
	// ListCards returns cards ordered by creation time, newest first. When
	// search is non-empty, results are filtered to cards whose name,
	// companyName, or email contains it, case-insensitively.
	ListCards(ctx context.Context, search string) ([]card.Card, error)
	GetCard(ctx context.Context, id string) (*card.Card, error)
	// CreateCard stores a new card. notionID may be empty.
	CreateCard(ctx context.Context, form card.Form, notionID string) (*card.Card, error)
	// UpdateCard applies the non-nil patch fields and bumps updatedAt.
	UpdateCard(ctx context.Context, id string, patch card.Patch) (*card.Card, error)
	DeleteCard(ctx context.Context, id string) error
	GetCardByEmail(ctx context.Context, email string) (*card.Card, error)
	GetCardByNotionID(ctx context.Context, notionID string) (*card.Card, error)
}

// HistoryStore persists dispatch history entries.
type HistoryStore interface {
	// SaveHistory writes one immutable entry and returns its id. SentAt is
	// assigned by the store.
	SaveHistory(ctx context.Context, entry card.MailHistory) (string, error)
	// ListHistory returns one page ordered by sentAt, newest first, plus the
	// total entry count. page is 1-based.
	ListHistory(ctx context.Context, page, limit int) ([]card.MailHistory, int, error)
}

// Store is the full persistence surface used by the HTTP layer.
type Store interface {
	CardStore
	HistoryStore
}
