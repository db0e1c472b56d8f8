package notion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ryusei2790/bissiness-card-management/internal/card"
	"github.com/ryusei2790/bissiness-card-management/internal/store"
)

// SyncResult summarizes one reconciliation run.
type SyncResult struct {
	Success            bool     `json:"success"`
	SyncedCount        int      `json:"syncedCount"`
	CreatedCount       int      `json:"createdCount"`
	UpdatedCount       int      `json:"updatedCount"`
	SkippedCount       int      `json:"skippedCount"`
	TotalNotionRecords int      `json:"totalNotionRecords"`
	Errors             []string `json:"errors,omitempty"`
}

// Syncer reconciles the workspace database into the card store. The Notion
// id is the primary match key; an email-only match is treated as a collision
// and never overwritten.
type Syncer struct {
	fetcher Fetcher
	store   store.CardStore
	logger  *slog.Logger
}

// NewSyncer creates a Syncer over the given connector and store.
func NewSyncer(f Fetcher, s store.CardStore, logger *slog.Logger) *Syncer {
	return &Syncer{fetcher: f, store: s, logger: logger}
}

// Sync fetches the full database snapshot and reconciles it record by
// record, sequentially, so each record sees the writes of the ones before
// it. Per-record failures are collected and never abort the run.
func (s *Syncer) Sync(ctx context.Context) (*SyncResult, error) {
	records, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch notion database: %w", err)
	}

	res := &SyncResult{Success: true, TotalNotionRecords: len(records)}
	for _, rec := range records {
		if err := s.syncRecord(ctx, rec, res); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", rec.Email, err))
		}
	}

	s.logger.Info("notion sync completed",
		"fetched", res.TotalNotionRecords,
		"created", res.CreatedCount,
		"updated", res.UpdatedCount,
		"skipped", res.SkippedCount,
		"errors", len(res.Errors),
	)
	return res, nil
}

func (s *Syncer) syncRecord(ctx context.Context, rec Record, res *SyncResult) error {
	existing, err := s.store.GetCardByNotionID(ctx, rec.NotionID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if existing == nil {
		// Fall back to the email as a secondary match key.
		existing, err = s.store.GetCardByEmail(ctx, rec.Email)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}

	switch {
	case existing != nil && existing.NotionID == rec.NotionID:
		patch := card.Patch{
			CompanyName:     &rec.CompanyName,
			Name:            &rec.Name,
			Email:           &rec.Email,
			MessageTemplate: &rec.MessageTemplate,
			Tags:            &rec.Tags,
		}
		if _, err := s.store.UpdateCard(ctx, existing.ID, patch); err != nil {
			return err
		}
		res.UpdatedCount++
		res.SyncedCount++

	case existing != nil:
		// Same email but a different (or missing) Notion id: an email
		// collision. The record is reported, not merged.
		res.SkippedCount++
		s.logger.Warn("skipping notion record with conflicting email",
			"email", rec.Email,
			"notionId", rec.NotionID,
			"existingCardId", existing.ID,
		)

	default:
		form := card.Form{
			CompanyName:     rec.CompanyName,
			Name:            rec.Name,
			Email:           rec.Email,
			MessageTemplate: rec.MessageTemplate,
			Tags:            rec.Tags,
		}
		if _, err := s.store.CreateCard(ctx, form, rec.NotionID); err != nil {
			return err
		}
		res.CreatedCount++
		res.SyncedCount++
	}
	return nil
}
