package api_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/ryusei2790/bissiness-card-management/internal/card"
	"github.com/ryusei2790/bissiness-card-management/internal/store"
)

func seedHistory(t *testing.T, st *store.Memory, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := st.SaveHistory(context.Background(), card.MailHistory{
			Recipients: []card.Recipient{{CardID: "c", Email: fmt.Sprintf("r%d@example.com", i)}},
			Subject:    fmt.Sprintf("subject %d", i),
			Body:       "body",
			Status:     card.HistoryStatusSuccess,
		})
		if err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}
}

func TestListHistoryPagination(t *testing.T) {
	st := store.NewMemory()
	_, _, tc := setup(t, st)
	seedHistory(t, st, 25)

	resp := tc.Get("/history?page=1&limit=10")
	resp.AssertStatus(200)
	m := resp.JSONMap()
	if m["total"] != float64(25) {
		t.Errorf("expected total=25, got %v", m["total"])
	}
	if m["totalPages"] != float64(3) {
		t.Errorf("expected totalPages=3, got %v", m["totalPages"])
	}
	entries, _ := m["history"].([]any)
	if len(entries) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(entries))
	}
	// Newest first.
	first, _ := entries[0].(map[string]any)
	if first["subject"] != "subject 24" {
		t.Errorf("expected newest entry first, got %v", first["subject"])
	}

	resp = tc.Get("/history?page=3&limit=10")
	resp.AssertStatus(200)
	entries, _ = resp.JSONMap()["history"].([]any)
	if len(entries) != 5 {
		t.Errorf("expected 5 entries on the last page, got %d", len(entries))
	}
}

func TestListHistoryDefaults(t *testing.T) {
	st := store.NewMemory()
	_, _, tc := setup(t, st)
	seedHistory(t, st, 3)

	m := tc.Get("/history").AssertStatus(200).JSONMap()
	if m["page"] != float64(1) || m["limit"] != float64(20) {
		t.Errorf("expected defaults page=1 limit=20, got page=%v limit=%v", m["page"], m["limit"])
	}
}

func TestListHistoryEmpty(t *testing.T) {
	_, _, tc := setup(t, store.NewMemory())

	m := tc.Get("/history").AssertStatus(200).JSONMap()
	entries, ok := m["history"].([]any)
	if !ok {
		t.Fatalf("history must be an array even when empty, got %T", m["history"])
	}
	if len(entries) != 0 || m["totalPages"] != float64(0) {
		t.Errorf("expected empty page, got %v", m)
	}
}

func TestListHistoryInvalidParams(t *testing.T) {
	_, _, tc := setup(t, store.NewMemory())

	for _, q := range []string{
		"page=0", "page=-1", "limit=0", "limit=101", "page=abc", "limit=abc",
	} {
		resp := tc.Get("/history?" + q)
		if resp.StatusCode != 400 {
			t.Errorf("query %q: expected 400, got %d", q, resp.StatusCode)
		}
	}

	// Boundary values are accepted.
	tc.Get("/history?page=1&limit=1").AssertStatus(200)
	tc.Get("/history?page=1&limit=100").AssertStatus(200)
}
