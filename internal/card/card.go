// Package card defines the domain types shared by the store, the importers,
// and the HTTP layer.
package card

import "time"

// Card is a stored business card.
type Card struct {
	ID              string    `json:"id"`
	CompanyName     string    `json:"companyName"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	MessageTemplate string    `json:"messageTemplate"`
	NotionID        string    `json:"notionId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	Tags            []string  `json:"tags"`
}

// Form carries the writable card fields, as submitted by the form path,
// the CSV importer, or the Notion connector.
type Form struct {
	CompanyName     string   `json:"companyName"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	MessageTemplate string   `json:"messageTemplate"`
	Tags            []string `json:"tags,omitempty"`
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	CompanyName     *string   `json:"companyName,omitempty"`
	Name            *string   `json:"name,omitempty"`
	Email           *string   `json:"email,omitempty"`
	MessageTemplate *string   `json:"messageTemplate,omitempty"`
	Tags            *[]string `json:"tags,omitempty"`
}

// Recipient is a point-in-time snapshot of a card taken when a mail
// dispatch is assembled.
type Recipient struct {
	CardID      string `json:"cardId"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	CompanyName string `json:"companyName"`
}

// Mail history status values.
const (
	HistoryStatusSuccess = "success"
	HistoryStatusFailed  = "failed"
)

// SendError records a per-recipient delivery failure inside a history entry.
type SendError struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// MailHistory is one dispatch attempt. Entries are written once and never
// mutated.
type MailHistory struct {
	ID         string      `json:"id"`
	Recipients []Recipient `json:"recipients"`
	Subject    string      `json:"subject"`
	Body       string      `json:"body"`
	SentAt     time.Time   `json:"sentAt"`
	Status     string      `json:"status"`
	Errors     []SendError `json:"errors,omitempty"`
}
