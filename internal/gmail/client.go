// Package gmail implements the Gmail API mail sender and the sequential
// rate-limited bulk dispatcher built on top of it.
package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ryusei2790/bissiness-card-management/internal/config"
)

const defaultSendURL = "https://gmail.googleapis.com/gmail/v1/users/me/messages/send"

// Sender delivers one message to one recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Client sends mail through the Gmail API using an offline OAuth refresh
// token. Token refresh is handled by the oauth2 transport.
type Client struct {
	from       string
	sendURL    string
	httpClient *http.Client
}

// NewClient builds a Gmail client from the configured OAuth credentials.
func NewClient(cfg config.GmailConfig) *Client {
	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"https://www.googleapis.com/auth/gmail.send"},
	}
	httpClient := oc.Client(context.Background(), &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
	})
	httpClient.Timeout = 20 * time.Second

	return &Client{
		from:       cfg.FromEmail,
		sendURL:    defaultSendURL,
		httpClient: httpClient,
	}
}

// Send builds an RFC 2822 message and posts it to the Gmail API.
func (c *Client) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(map[string]string{
		"raw": buildRawMessage(c.from, to, subject, body),
	})
	if err != nil {
		return fmt.Errorf("marshal gmail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create gmail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gmail send failed: status %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

// buildRawMessage assembles a UTF-8 plain-text message with an RFC 2047
// encoded subject and returns it base64url-encoded for the Gmail API raw
// field.
func buildRawMessage(from, to, subject, body string) string {
	encodedSubject := "=?UTF-8?B?" + base64.StdEncoding.EncodeToString([]byte(subject)) + "?="
	encodedBody := base64.StdEncoding.EncodeToString([]byte(body))

	message := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + encodedSubject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"Content-Transfer-Encoding: base64",
		"",
		encodedBody,
	}, "\r\n")

	return base64.RawURLEncoding.EncodeToString([]byte(message))
}
