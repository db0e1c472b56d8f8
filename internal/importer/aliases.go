package importer

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AliasTable maps each logical CSV field to an ordered list of accepted
// header spellings. Spellings are compared after normalization, so entries
// here do not need every whitespace or parenthesis variant.
type AliasTable struct {
	Company    []string `yaml:"company"`
	Name       []string `yaml:"name"`
	Email      []string `yaml:"email"`
	Area       []string `yaml:"area"`
	Status     []string `yaml:"status"`
	Department []string `yaml:"department"`
	Position   []string `yaml:"position"`
	Contact    []string `yaml:"contact"`
	Memo       []string `yaml:"memo"`
}

// DefaultAliases returns the built-in header spellings, covering the
// Japanese and English variants seen in exported spreadsheets.
func DefaultAliases() AliasTable {
	return AliasTable{
		Company:    []string{"企業名", "会社名", "Company"},
		Name:       []string{"担当者名", "名前", "Name", "氏名"},
		Email:      []string{"連絡先(メール)", "メール", "Email", "メールアドレス", "連絡先（メール）"},
		Area:       []string{"エリア", "Area"},
		Status:     []string{"アプローチ状況", "状況", "Status"},
		Department: []string{"担当部署", "部署", "Department"},
		Position:   []string{"役職", "Position"},
		Contact:    []string{"連絡手段", "Contact"},
		Memo:       []string{"メモ", "Memo", "Note"},
	}
}

// LoadAliases extends the default table with spellings from a YAML file.
// File entries are appended after the defaults, so built-in spellings keep
// priority.
func LoadAliases(path string) (AliasTable, error) {
	t := DefaultAliases()

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read alias file: %w", err)
	}
	var extra AliasTable
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return t, fmt.Errorf("parse alias file: %w", err)
	}

	t.Company = append(t.Company, extra.Company...)
	t.Name = append(t.Name, extra.Name...)
	t.Email = append(t.Email, extra.Email...)
	t.Area = append(t.Area, extra.Area...)
	t.Status = append(t.Status, extra.Status...)
	t.Department = append(t.Department, extra.Department...)
	t.Position = append(t.Position, extra.Position...)
	t.Contact = append(t.Contact, extra.Contact...)
	t.Memo = append(t.Memo, extra.Memo...)
	return t, nil
}

// normalizeHeader strips all whitespace (ASCII space, ideographic space,
// tabs) and folds full-width parentheses to ASCII, so header variants across
// locales resolve to the same key.
func normalizeHeader(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch r {
		case ' ', '\t', '　', '\r', '\n':
			// dropped
		case '（':
			b.WriteRune('(')
		case '）':
			b.WriteRune(')')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// columnValue resolves a logical field from a normalized-header row map by
// trying the alias spellings in order. Empty values are treated as absent.
func columnValue(row map[string]string, aliases []string) string {
	for _, name := range aliases {
		if v := row[normalizeHeader(name)]; v != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
