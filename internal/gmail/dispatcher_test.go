package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryusei2790/bissiness-card-management/internal/card"
)

type recordingSender struct {
	fail  map[string]bool
	sends []string
}

func (s *recordingSender) Send(ctx context.Context, to, subject, body string) error {
	s.sends = append(s.sends, to)
	if s.fail[to] {
		return errors.New("quota exceeded")
	}
	return nil
}

func newDispatcher(sender Sender) *Dispatcher {
	d := NewDispatcher(sender, slog.New(slog.NewTextHandler(io.Discard, nil)))
	d.pause = 0 // no need to rate-limit a fake
	return d
}

func recipients(emails ...string) []card.Recipient {
	rs := make([]card.Recipient, 0, len(emails))
	for _, e := range emails {
		rs = append(rs, card.Recipient{CardID: "id-" + e, Email: e, Name: e})
	}
	return rs
}

func TestDispatchAllSucceed(t *testing.T) {
	sender := &recordingSender{}
	res := newDispatcher(sender).Dispatch(context.Background(),
		recipients("a@x.com", "b@x.com", "c@x.com"), "件名", "本文")

	assert.True(t, res.Success)
	assert.Equal(t, 3, res.SentCount)
	assert.Empty(t, res.FailedEmails)
	// Strictly in order, one send per recipient.
	assert.Equal(t, []string{"a@x.com", "b@x.com", "c@x.com"}, sender.sends)
}

func TestDispatchPartialFailure(t *testing.T) {
	sender := &recordingSender{fail: map[string]bool{"b@x.com": true}}
	res := newDispatcher(sender).Dispatch(context.Background(),
		recipients("a@x.com", "b@x.com", "c@x.com"), "件名", "本文")

	assert.True(t, res.Success, "one delivered send is enough")
	assert.Equal(t, 2, res.SentCount)
	assert.Equal(t, []string{"b@x.com"}, res.FailedEmails)
	// A failure does not stop the remaining sends.
	assert.Len(t, sender.sends, 3)
}

func TestDispatchAllFail(t *testing.T) {
	sender := &recordingSender{fail: map[string]bool{"a@x.com": true, "b@x.com": true}}
	res := newDispatcher(sender).Dispatch(context.Background(),
		recipients("a@x.com", "b@x.com"), "件名", "本文")

	assert.False(t, res.Success)
	assert.Equal(t, 0, res.SentCount)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, res.FailedEmails)
}

func TestDispatchNoRecipients(t *testing.T) {
	sender := &recordingSender{}
	res := newDispatcher(sender).Dispatch(context.Background(), nil, "件名", "本文")

	assert.True(t, res.Success)
	assert.Equal(t, 0, res.SentCount)
	assert.Empty(t, sender.sends)
}

func TestBuildRawMessage(t *testing.T) {
	raw := buildRawMessage("me@example.com", "you@example.com", "ご挨拶", "本文です")

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	require.NoError(t, err)
	msg := string(decoded)

	lines := strings.Split(msg, "\r\n")
	require.GreaterOrEqual(t, len(lines), 8)
	assert.Equal(t, "From: me@example.com", lines[0])
	assert.Equal(t, "To: you@example.com", lines[1])

	// RFC 2047 base64 subject round-trips.
	subjectB64 := strings.TrimSuffix(strings.TrimPrefix(lines[2], "Subject: =?UTF-8?B?"), "?=")
	subject, err := base64.StdEncoding.DecodeString(subjectB64)
	require.NoError(t, err)
	assert.Equal(t, "ご挨拶", string(subject))

	assert.Equal(t, "MIME-Version: 1.0", lines[3])
	assert.Equal(t, "Content-Type: text/plain; charset=UTF-8", lines[4])
	assert.Equal(t, "Content-Transfer-Encoding: base64", lines[5])
	assert.Equal(t, "", lines[6])

	body, err := base64.StdEncoding.DecodeString(lines[7])
	require.NoError(t, err)
	assert.Equal(t, "本文です", string(body))
}
