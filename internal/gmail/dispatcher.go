package gmail

import (
	"context"
	"log/slog"
	"time"

	"github.com/ryusei2790/bissiness-card-management/internal/card"
)

// sendPause is the fixed wait between consecutive sends. The Gmail quota
// is per-account, so sends must not be parallelized.
const sendPause = 100 * time.Millisecond

// DispatchResult reports one bulk send. Success is false only when every
// send failed.
type DispatchResult struct {
	Success      bool
	SentCount    int
	FailedEmails []string
}

// Dispatcher sends one message per recipient, strictly sequentially, with a
// fixed pause between sends. Per-recipient failures are collected and never
// abort the remaining sends; nothing is retried.
type Dispatcher struct {
	sender Sender
	pause  time.Duration
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher over the given sender.
func NewDispatcher(sender Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, pause: sendPause, logger: logger}
}

// Dispatch sends subject/body to every recipient in order.
func (d *Dispatcher) Dispatch(ctx context.Context, recipients []card.Recipient, subject, body string) *DispatchResult {
	res := &DispatchResult{}
	for i, r := range recipients {
		if i > 0 {
			time.Sleep(d.pause)
		}
		if err := d.sender.Send(ctx, r.Email, subject, body); err != nil {
			d.logger.Error("failed to send mail", "email", r.Email, "err", err)
			res.FailedEmails = append(res.FailedEmails, r.Email)
			continue
		}
		res.SentCount++
	}

	res.Success = res.SentCount > 0
	if len(recipients) == 0 {
		res.Success = true
	}
	return res
}
