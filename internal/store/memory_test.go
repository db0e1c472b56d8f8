package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryusei2790/bissiness-card-management/internal/card"
)

func mustCreate(t *testing.T, m *Memory, company, name, email, notionID string) *card.Card {
	t.Helper()
	c, err := m.CreateCard(context.Background(), card.Form{
		CompanyName: company,
		Name:        name,
		Email:       email,
	}, notionID)
	require.NoError(t, err)
	return c
}

func TestMemoryCreateAndGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	created := mustCreate(t, m, "Acme", "Jane", "jane@acme.com", "")
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := m.GetCard(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *got)

	_, err = m.GetCard(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListNewestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		mustCreate(t, m, fmt.Sprintf("Co %d", i), "n", fmt.Sprintf("u%d@x.com", i), "")
	}

	cards, err := m.ListCards(ctx, "")
	require.NoError(t, err)
	require.Len(t, cards, 3)
	assert.Equal(t, "Co 2", cards[0].CompanyName)
	assert.Equal(t, "Co 0", cards[2].CompanyName)
}

func TestMemorySearch(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	mustCreate(t, m, "Acme", "Jane Doe", "jane@acme.com", "")
	mustCreate(t, m, "Globex", "John Roe", "john@globex.com", "")

	for _, q := range []string{"acme", "ACME", "jane", "jane@"} {
		cards, err := m.ListCards(ctx, q)
		require.NoError(t, err)
		require.Len(t, cards, 1, "query %q", q)
		assert.Equal(t, "Acme", cards[0].CompanyName)
	}

	cards, err := m.ListCards(ctx, "nothing-matches")
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestMemoryUpdatePartial(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	created := mustCreate(t, m, "Acme", "Jane", "jane@acme.com", "")

	name := "Jane Doe"
	tags := []string{"エリア:東京"}
	updated, err := m.UpdateCard(ctx, created.ID, card.Patch{Name: &name, Tags: &tags})
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", updated.Name)
	assert.Equal(t, tags, updated.Tags)
	// Untouched fields survive.
	assert.Equal(t, "Acme", updated.CompanyName)
	assert.Equal(t, "jane@acme.com", updated.Email)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	_, err = m.UpdateCard(ctx, "missing", card.Patch{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDeleteIdempotent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	created := mustCreate(t, m, "Acme", "Jane", "jane@acme.com", "")
	require.NoError(t, m.DeleteCard(ctx, created.ID))
	require.NoError(t, m.DeleteCard(ctx, created.ID))

	_, err := m.GetCard(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	cards, err := m.ListCards(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestMemoryLookupByEmailAndNotionID(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	mustCreate(t, m, "Acme", "Jane", "jane@acme.com", "n1")
	mustCreate(t, m, "Globex", "John", "john@globex.com", "")

	c, err := m.GetCardByEmail(ctx, "john@globex.com")
	require.NoError(t, err)
	assert.Equal(t, "Globex", c.CompanyName)

	c, err = m.GetCardByNotionID(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.CompanyName)

	_, err = m.GetCardByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	// Cards without a Notion id never match, not even the empty key.
	_, err = m.GetCardByNotionID(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryHistoryPagination(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		id, err := m.SaveHistory(ctx, card.MailHistory{
			Subject: fmt.Sprintf("subject %d", i),
			Status:  card.HistoryStatusSuccess,
		})
		require.NoError(t, err)
		require.NotEmpty(t, id)
	}

	entries, total, err := m.ListHistory(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, entries, 2)
	assert.Equal(t, "subject 4", entries[0].Subject)
	assert.Equal(t, "subject 3", entries[1].Subject)

	entries, _, err = m.ListHistory(ctx, 3, 2)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "subject 0", entries[0].Subject)

	entries, total, err = m.ListHistory(ctx, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, entries)
}
