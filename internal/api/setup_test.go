package api_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/ryusei2790/bissiness-card-management/internal/api"
	"github.com/ryusei2790/bissiness-card-management/internal/card"
	"github.com/ryusei2790/bissiness-card-management/internal/gmail"
	"github.com/ryusei2790/bissiness-card-management/internal/httpkit"
	"github.com/ryusei2790/bissiness-card-management/internal/importer"
	"github.com/ryusei2790/bissiness-card-management/internal/notion"
	"github.com/ryusei2790/bissiness-card-management/internal/store"
	"github.com/ryusei2790/bissiness-card-management/internal/testutil"
)

// fakeDispatcher implements api.MailDispatcher. Emails present in fail are
// reported as failed sends.
type fakeDispatcher struct {
	fail  map[string]bool
	calls [][]card.Recipient
}

func (f *fakeDispatcher) Dispatch(_ context.Context, recipients []card.Recipient, subject, body string) *gmail.DispatchResult {
	f.calls = append(f.calls, recipients)
	res := &gmail.DispatchResult{}
	for _, r := range recipients {
		if f.fail[r.Email] {
			res.FailedEmails = append(res.FailedEmails, r.Email)
			continue
		}
		res.SentCount++
	}
	res.Success = res.SentCount > 0
	return res
}

// fakeSyncer implements api.SyncRunner with a canned result.
type fakeSyncer struct {
	res *notion.SyncResult
	err error
}

func (f *fakeSyncer) Sync(context.Context) (*notion.SyncResult, error) {
	return f.res, f.err
}

// setup wires a full handler over the given store behind an httptest server.
func setup(t *testing.T, st store.Store) (*fakeDispatcher, *fakeSyncer, *testutil.Client) {
	t.Helper()

	disp := &fakeDispatcher{fail: map[string]bool{}}
	sync := &fakeSyncer{res: &notion.SyncResult{Success: true}}

	srv := httpkit.New("0", false)
	imp := importer.New(st, importer.DefaultAliases(), srv.Logger)
	handler := api.NewHandler(st, imp, sync, disp, srv.Logger)
	handler.Routes(srv.Router)

	ts := httptest.NewServer(srv.Router)
	t.Cleanup(ts.Close)
	return disp, sync, testutil.NewClient(t, ts)
}

// createCard seeds one card through the API and returns its id.
func createCard(t *testing.T, tc *testutil.Client, company, name, email string) string {
	t.Helper()
	resp := tc.Post("/cards", map[string]any{
		"companyName":     company,
		"name":            name,
		"email":           email,
		"messageTemplate": "",
	})
	resp.AssertStatus(201)
	id, ok := resp.JSONMap()["id"].(string)
	if !ok || id == "" {
		t.Fatal("expected card id in response")
	}
	return id
}
