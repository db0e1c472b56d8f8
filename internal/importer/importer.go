// Package importer implements the CSV contact import: encoding detection,
// flexible header resolution, validation, and email-deduplicated insertion.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ryusei2790/bissiness-card-management/internal/card"
	"github.com/ryusei2790/bissiness-card-management/internal/store"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s passes the simple local@domain.tld shape
// check used across the service.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ParseError is returned when the CSV itself is structurally broken. The
// whole import fails; there is no partial import on parse errors.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("CSVファイルの解析に失敗しました: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Result summarizes one import run. Skipped and errored rows each contribute
// one human-readable reason string.
type Result struct {
	Success      bool     `json:"success"`
	CreatedCount int      `json:"createdCount"`
	SkippedCount int      `json:"skippedCount"`
	TotalRows    int      `json:"totalRows"`
	Errors       []string `json:"errors,omitempty"`
}

// Importer parses uploaded CSV files and inserts new cards, skipping rows
// whose email already exists in the store.
type Importer struct {
	store   store.CardStore
	aliases AliasTable
	logger  *slog.Logger
}

// New creates an Importer over the given card store.
func New(s store.CardStore, aliases AliasTable, logger *slog.Logger) *Importer {
	return &Importer{store: s, aliases: aliases, logger: logger}
}

// Import transcodes, parses, and imports one uploaded file. Rows are
// processed strictly in order so that a later duplicate sees the card an
// earlier row created. A *ParseError means nothing was imported; any other
// per-row trouble is reported in the Result and does not abort the run.
func (im *Importer) Import(ctx context.Context, raw []byte) (*Result, error) {
	text, err := decodeText(raw)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	headers, rows, err := parseCSV(text)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	res := &Result{Success: true, TotalRows: len(rows)}
	for _, record := range rows {
		row := rowMap(headers, record)
		im.importRow(ctx, row, res)
	}

	im.logger.Info("csv import completed",
		"created", res.CreatedCount,
		"skipped", res.SkippedCount,
		"total", res.TotalRows,
		"errors", len(res.Errors),
	)
	return res, nil
}

// parseCSV reads a header-delimited CSV, tolerating ragged rows the way
// papaparse does. Fully empty lines are dropped.
func parseCSV(text string) (headers []string, rows [][]string, err error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	headers = records[0]
	for _, rec := range records[1:] {
		if isEmptyRecord(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	return headers, rows, nil
}

func isEmptyRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// rowMap builds a normalized-header lookup for one record. Extra cells
// beyond the header row are ignored; missing cells read as empty.
func rowMap(headers, record []string) map[string]string {
	row := make(map[string]string, len(headers))
	for i, h := range headers {
		if i >= len(record) {
			break
		}
		row[normalizeHeader(h)] = record[i]
	}
	return row
}

func (im *Importer) importRow(ctx context.Context, row map[string]string, res *Result) {
	companyName := columnValue(row, im.aliases.Company)
	name := columnValue(row, im.aliases.Name)
	email := columnValue(row, im.aliases.Email)

	// Spreadsheets frequently leave the contact-person column blank; the
	// company name stands in for it rather than dropping the row.
	if companyName != "" && name == "" {
		name = companyName
	}

	if companyName == "" || name == "" || email == "" {
		res.SkippedCount++
		res.Errors = append(res.Errors, fmt.Sprintf(
			"行をスキップ: 必須項目が不足 (企業名: %s, 担当者名: %s, メール: %s)",
			companyName, name, email))
		return
	}

	if !ValidEmail(email) {
		res.SkippedCount++
		res.Errors = append(res.Errors, fmt.Sprintf("行をスキップ: 無効なメールアドレス (%s)", email))
		return
	}

	var tags []string
	for _, t := range []struct{ label, value string }{
		{"エリア", columnValue(row, im.aliases.Area)},
		{"状況", columnValue(row, im.aliases.Status)},
		{"部署", columnValue(row, im.aliases.Department)},
		{"役職", columnValue(row, im.aliases.Position)},
		{"連絡", columnValue(row, im.aliases.Contact)},
	} {
		if t.value != "" {
			tags = append(tags, t.label+":"+t.value)
		}
	}

	form := card.Form{
		CompanyName:     companyName,
		Name:            name,
		Email:           email,
		MessageTemplate: columnValue(row, im.aliases.Memo),
		Tags:            tags,
	}

	existing, err := im.store.GetCardByEmail(ctx, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", email, err))
		return
	}
	if existing != nil {
		// Import never overwrites an existing card.
		res.SkippedCount++
		im.logger.Debug("skipping duplicate email", "email", email)
		return
	}

	if _, err := im.store.CreateCard(ctx, form, ""); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", email, err))
		return
	}
	res.CreatedCount++
}
