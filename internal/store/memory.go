package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ryusei2790/bissiness-card-management/internal/card"
)

// Memory is a thread-safe in-memory Store. It backs every test and the
// -store memory development mode.
type Memory struct {
	mu           sync.RWMutex
	cards        map[string]card.Card
	cardOrder    []string // insertion order; listings iterate it in reverse
	history      map[string]card.MailHistory
	historyOrder []string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		cards:   make(map[string]card.Card),
		history: make(map[string]card.MailHistory),
	}
}

func (m *Memory) ListCards(ctx context.Context, search string) ([]card.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q := strings.ToLower(search)
	result := make([]card.Card, 0, len(m.cardOrder))
	for i := len(m.cardOrder) - 1; i >= 0; i-- {
		c := m.cards[m.cardOrder[i]]
		if q != "" &&
			!strings.Contains(strings.ToLower(c.CompanyName), q) &&
			!strings.Contains(strings.ToLower(c.Name), q) &&
			!strings.Contains(strings.ToLower(c.Email), q) {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

func (m *Memory) GetCard(ctx context.Context, id string) (*card.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cards[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *Memory) CreateCard(ctx context.Context, form card.Form, notionID string) (*card.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	c := card.Card{
		ID:              uuid.NewString(),
		CompanyName:     form.CompanyName,
		Name:            form.Name,
		Email:           form.Email,
		MessageTemplate: form.MessageTemplate,
		NotionID:        notionID,
		CreatedAt:       now,
		UpdatedAt:       now,
		Tags:            append([]string(nil), form.Tags...),
	}
	m.cards[c.ID] = c
	m.cardOrder = append(m.cardOrder, c.ID)
	return &c, nil
}

func (m *Memory) UpdateCard(ctx context.Context, id string, patch card.Patch) (*card.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.cards[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.CompanyName != nil {
		c.CompanyName = *patch.CompanyName
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Email != nil {
		c.Email = *patch.Email
	}
	if patch.MessageTemplate != nil {
		c.MessageTemplate = *patch.MessageTemplate
	}
	if patch.Tags != nil {
		c.Tags = append([]string(nil), (*patch.Tags)...)
	}
	c.UpdatedAt = time.Now()
	m.cards[id] = c
	return &c, nil
}

func (m *Memory) DeleteCard(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cards[id]; !ok {
		return nil // deletion is idempotent, matching the document store
	}
	delete(m.cards, id)
	for i, oid := range m.cardOrder {
		if oid == id {
			m.cardOrder = append(m.cardOrder[:i], m.cardOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) GetCardByEmail(ctx context.Context, email string) (*card.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.cardOrder {
		if c := m.cards[id]; c.Email == email {
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetCardByNotionID(ctx context.Context, notionID string) (*card.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.cardOrder {
		if c := m.cards[id]; c.NotionID != "" && c.NotionID == notionID {
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) SaveHistory(ctx context.Context, entry card.MailHistory) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = uuid.NewString()
	entry.SentAt = time.Now()
	m.history[entry.ID] = entry
	m.historyOrder = append(m.historyOrder, entry.ID)
	return entry.ID, nil
}

func (m *Memory) ListHistory(ctx context.Context, page, limit int) ([]card.MailHistory, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := len(m.historyOrder)
	offset := (page - 1) * limit

	result := make([]card.MailHistory, 0, limit)
	for i := total - 1 - offset; i >= 0 && len(result) < limit; i-- {
		result = append(result, m.history[m.historyOrder[i]])
	}
	return result, total, nil
}
