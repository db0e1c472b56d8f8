package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ryusei2790/bissiness-card-management/internal/card"
)

// Firestore collection names.
const (
	collCards       = "cards"
	collMailHistory = "mailHistory"
)

// FirestoreStore is the production Store backed by Cloud Firestore. Document
// ids and createdAt/updatedAt/sentAt timestamps are assigned server-side.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestore connects to Firestore for the given project. When
// credentialsFile is empty, application default credentials are used.
func NewFirestore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect firestore: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

// Close releases the underlying client.
func (s *FirestoreStore) Close() error { return s.client.Close() }

type cardDoc struct {
	CompanyName     string    `firestore:"companyName"`
	Name            string    `firestore:"name"`
	Email           string    `firestore:"email"`
	MessageTemplate string    `firestore:"messageTemplate"`
	NotionID        string    `firestore:"notionId,omitempty"`
	Tags            []string  `firestore:"tags"`
	CreatedAt       time.Time `firestore:"createdAt,serverTimestamp"`
	UpdatedAt       time.Time `firestore:"updatedAt,serverTimestamp"`
}

func (d cardDoc) toCard(id string) card.Card {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return card.Card{
		ID:              id,
		CompanyName:     d.CompanyName,
		Name:            d.Name,
		Email:           d.Email,
		MessageTemplate: d.MessageTemplate,
		NotionID:        d.NotionID,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
		Tags:            tags,
	}
}

func snapToCard(snap *firestore.DocumentSnapshot) (*card.Card, error) {
	var d cardDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("decode card %s: %w", snap.Ref.ID, err)
	}
	c := d.toCard(snap.Ref.ID)
	return &c, nil
}

func (s *FirestoreStore) ListCards(ctx context.Context, search string) ([]card.Card, error) {
	iter := s.client.Collection(collCards).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	// Firestore has no case-insensitive substring query, so the filter is
	// applied here after the fetch.
	q := strings.ToLower(search)
	var cards []card.Card
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list cards: %w", err)
		}
		c, err := snapToCard(snap)
		if err != nil {
			return nil, err
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(c.CompanyName), q) &&
			!strings.Contains(strings.ToLower(c.Name), q) &&
			!strings.Contains(strings.ToLower(c.Email), q) {
			continue
		}
		cards = append(cards, *c)
	}
	if cards == nil {
		cards = []card.Card{}
	}
	return cards, nil
}

func (s *FirestoreStore) GetCard(ctx context.Context, id string) (*card.Card, error) {
	snap, err := s.client.Collection(collCards).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	return snapToCard(snap)
}

func (s *FirestoreStore) CreateCard(ctx context.Context, form card.Form, notionID string) (*card.Card, error) {
	ref := s.client.Collection(collCards).NewDoc()
	doc := cardDoc{
		CompanyName:     form.CompanyName,
		Name:            form.Name,
		Email:           form.Email,
		MessageTemplate: form.MessageTemplate,
		NotionID:        notionID,
		Tags:            form.Tags,
	}
	if _, err := ref.Set(ctx, doc); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}

	// Read back to resolve the server-assigned timestamps.
	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read back created card: %w", err)
	}
	return snapToCard(snap)
}

func (s *FirestoreStore) UpdateCard(ctx context.Context, id string, patch card.Patch) (*card.Card, error) {
	updates := []firestore.Update{
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}
	if patch.CompanyName != nil {
		updates = append(updates, firestore.Update{Path: "companyName", Value: *patch.CompanyName})
	}
	if patch.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *patch.Name})
	}
	if patch.Email != nil {
		updates = append(updates, firestore.Update{Path: "email", Value: *patch.Email})
	}
	if patch.MessageTemplate != nil {
		updates = append(updates, firestore.Update{Path: "messageTemplate", Value: *patch.MessageTemplate})
	}
	if patch.Tags != nil {
		updates = append(updates, firestore.Update{Path: "tags", Value: *patch.Tags})
	}

	ref := s.client.Collection(collCards).Doc(id)
	if _, err := ref.Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update card: %w", err)
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read back updated card: %w", err)
	}
	return snapToCard(snap)
}

func (s *FirestoreStore) DeleteCard(ctx context.Context, id string) error {
	if _, err := s.client.Collection(collCards).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return nil
}

func (s *FirestoreStore) getCardWhere(ctx context.Context, field, value string) (*card.Card, error) {
	iter := s.client.Collection(collCards).
		Where(field, "==", value).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query card by %s: %w", field, err)
	}
	return snapToCard(snap)
}

func (s *FirestoreStore) GetCardByEmail(ctx context.Context, email string) (*card.Card, error) {
	return s.getCardWhere(ctx, "email", email)
}

func (s *FirestoreStore) GetCardByNotionID(ctx context.Context, notionID string) (*card.Card, error) {
	return s.getCardWhere(ctx, "notionId", notionID)
}

type recipientDoc struct {
	CardID      string `firestore:"cardId"`
	Email       string `firestore:"email"`
	Name        string `firestore:"name"`
	CompanyName string `firestore:"companyName"`
}

type sendErrorDoc struct {
	Email   string `firestore:"email"`
	Message string `firestore:"message"`
}

type historyDoc struct {
	Recipients []recipientDoc `firestore:"recipients"`
	Subject    string         `firestore:"subject"`
	Body       string         `firestore:"body"`
	SentAt     time.Time      `firestore:"sentAt,serverTimestamp"`
	Status     string         `firestore:"status"`
	Errors     []sendErrorDoc `firestore:"errors,omitempty"`
}

func (s *FirestoreStore) SaveHistory(ctx context.Context, entry card.MailHistory) (string, error) {
	doc := historyDoc{
		Subject: entry.Subject,
		Body:    entry.Body,
		Status:  entry.Status,
	}
	for _, r := range entry.Recipients {
		doc.Recipients = append(doc.Recipients, recipientDoc(r))
	}
	for _, e := range entry.Errors {
		doc.Errors = append(doc.Errors, sendErrorDoc(e))
	}

	ref := s.client.Collection(collMailHistory).NewDoc()
	if _, err := ref.Set(ctx, doc); err != nil {
		return "", fmt.Errorf("save mail history: %w", err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) ListHistory(ctx context.Context, page, limit int) ([]card.MailHistory, int, error) {
	total, err := s.countHistory(ctx)
	if err != nil {
		return nil, 0, err
	}

	iter := s.client.Collection(collMailHistory).
		OrderBy("sentAt", firestore.Desc).
		Offset((page - 1) * limit).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	history := make([]card.MailHistory, 0, limit)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("list mail history: %w", err)
		}
		var d historyDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, 0, fmt.Errorf("decode mail history %s: %w", snap.Ref.ID, err)
		}
		entry := card.MailHistory{
			ID:      snap.Ref.ID,
			Subject: d.Subject,
			Body:    d.Body,
			SentAt:  d.SentAt,
			Status:  d.Status,
		}
		for _, r := range d.Recipients {
			entry.Recipients = append(entry.Recipients, card.Recipient(r))
		}
		for _, e := range d.Errors {
			entry.Errors = append(entry.Errors, card.SendError(e))
		}
		history = append(history, entry)
	}
	return history, total, nil
}

// countHistory counts documents with a field-less query, keeping the client
// surface small at the cost of one id-only scan.
func (s *FirestoreStore) countHistory(ctx context.Context) (int, error) {
	iter := s.client.Collection(collMailHistory).Select().Documents(ctx)
	defer iter.Stop()

	total := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("count mail history: %w", err)
		}
		total++
	}
	return total, nil
}
