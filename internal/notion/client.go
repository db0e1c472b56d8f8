// Package notion implements the workspace-database connector and the sync
// reconciler that folds fetched records into the card store.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.notion.com"
	apiVersion     = "2022-06-28"
	pageSize       = 100
)

// Record is one flattened workspace-database row. Records returned by
// FetchAll always carry companyName, name, and email; rows missing any of
// them are filtered out by the connector.
type Record struct {
	NotionID        string
	CompanyName     string
	Name            string
	Email           string
	MessageTemplate string
	Tags            []string
}

// Fetcher is the connector contract consumed by the reconciler.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]Record, error)
}

// Client fetches and flattens a Notion database over the REST API.
type Client struct {
	apiKey     string
	databaseID string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a connector for the given database. A bare 32-char
// database id is normalized to its hyphenated UUID form.
func NewClient(apiKey, databaseID string, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		databaseID: formatDatabaseID(databaseID),
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		logger:     logger,
	}
}

// SetBaseURL points the client at a different API host. Used by tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = strings.TrimRight(u, "/") }

func formatDatabaseID(id string) string {
	if strings.Contains(id, "-") {
		return id
	}
	if len(id) == 32 {
		return fmt.Sprintf("%s-%s-%s-%s-%s",
			id[0:8], id[8:12], id[12:16], id[16:20], id[20:])
	}
	return id
}

type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size"`
}

type queryResponse struct {
	Results    []page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

type page struct {
	ID         string              `json:"id"`
	Properties map[string]property `json:"properties"`
}

type property struct {
	Type        string         `json:"type"`
	Title       []richText     `json:"title"`
	RichText    []richText     `json:"rich_text"`
	Email       string         `json:"email"`
	MultiSelect []selectOption `json:"multi_select"`
}

type richText struct {
	PlainText string `json:"plain_text"`
}

type selectOption struct {
	Name string `json:"name"`
}

// FetchAll queries the database, following pagination until every page has
// been seen, and flattens each row into a Record.
func (c *Client) FetchAll(ctx context.Context) ([]Record, error) {
	var records []Record
	cursor := ""
	for {
		resp, err := c.queryPage(ctx, cursor)
		if err != nil {
			return nil, err
		}

		for _, p := range resp.Results {
			rec := Record{
				NotionID:        p.ID,
				CompanyName:     extractRichText(p.Properties, "Company"),
				Name:            extractTitle(p.Properties),
				Email:           extractEmail(p.Properties, "Email"),
				MessageTemplate: extractRichText(p.Properties, "Text"),
				Tags:            extractMultiSelect(p.Properties, "タグ"),
			}
			if rec.CompanyName == "" || rec.Name == "" || rec.Email == "" {
				c.logger.Debug("skipping notion page with missing fields",
					"id", p.ID, "email", rec.Email)
				continue
			}
			records = append(records, rec)
		}

		if !resp.HasMore || resp.NextCursor == "" {
			return records, nil
		}
		cursor = resp.NextCursor
	}
}

func (c *Client) queryPage(ctx context.Context, cursor string) (*queryResponse, error) {
	body, err := json.Marshal(queryRequest{StartCursor: cursor, PageSize: pageSize})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	url := fmt.Sprintf("%s/v1/databases/%s/query", c.baseURL, c.databaseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create query request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query notion database: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("notion query failed: status %d: %s", resp.StatusCode, string(b))
	}

	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return nil, fmt.Errorf("decode notion response: %w", err)
	}
	return &qr, nil
}

// extractTitle returns the plain text of whichever property is the title,
// regardless of what the database calls it.
func extractTitle(props map[string]property) string {
	for _, p := range props {
		if p.Type == "title" && len(p.Title) > 0 {
			return p.Title[0].PlainText
		}
	}
	return ""
}

func extractRichText(props map[string]property, name string) string {
	p, ok := props[name]
	if !ok || p.Type != "rich_text" {
		return ""
	}
	var b strings.Builder
	for _, t := range p.RichText {
		b.WriteString(t.PlainText)
	}
	return b.String()
}

func extractEmail(props map[string]property, name string) string {
	p, ok := props[name]
	if !ok || p.Type != "email" {
		return ""
	}
	return p.Email
}

func extractMultiSelect(props map[string]property, name string) []string {
	p, ok := props[name]
	if !ok || p.Type != "multi_select" {
		return nil
	}
	tags := make([]string, 0, len(p.MultiSelect))
	for _, o := range p.MultiSelect {
		tags = append(tags, o.Name)
	}
	return tags
}
