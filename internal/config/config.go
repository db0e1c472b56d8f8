// Package config loads the service configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all environment-driven settings.
type Config struct {
	Port string

	Firestore FirestoreConfig
	Gmail     GmailConfig
	Notion    NotionConfig
}

// FirestoreConfig holds the document store settings. CredentialsFile may be
// empty, in which case the Firestore client falls back to application
// default credentials.
type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
}

// GmailConfig holds the Gmail API OAuth settings for the dispatcher.
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	FromEmail    string
	RedirectURI  string
}

// NotionConfig holds the workspace-database connector settings.
type NotionConfig struct {
	APIKey     string
	DatabaseID string
}

// Load reads configuration from the environment. A .env file is honored when
// present and silently ignored otherwise.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Firestore: FirestoreConfig{
			ProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
			CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		},
		Gmail: GmailConfig{
			ClientID:     os.Getenv("GMAIL_CLIENT_ID"),
			ClientSecret: os.Getenv("GMAIL_CLIENT_SECRET"),
			RefreshToken: os.Getenv("GMAIL_REFRESH_TOKEN"),
			FromEmail:    os.Getenv("GMAIL_FROM_EMAIL"),
			RedirectURI:  getEnv("GMAIL_REDIRECT_URI", "http://localhost:3000/api/auth/callback/google"),
		},
		Notion: NotionConfig{
			APIKey:     os.Getenv("NOTION_API_KEY"),
			DatabaseID: os.Getenv("NOTION_DATABASE_ID"),
		},
	}

	return cfg, nil
}

// ValidateFirestore reports an error when the document store settings are
// incomplete. Checked only when the Firestore backend is selected.
func (c *Config) ValidateFirestore() error {
	if c.Firestore.ProjectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID environment variable is not set")
	}
	return nil
}

// ValidateGmail reports an error when any Gmail credential is missing.
// Checked at dispatch time, not at startup, so the CRUD surface works
// without mail credentials.
func (c *Config) ValidateGmail() error {
	if c.Gmail.ClientID == "" || c.Gmail.ClientSecret == "" {
		return fmt.Errorf("GMAIL_CLIENT_ID / GMAIL_CLIENT_SECRET is not set")
	}
	if c.Gmail.RefreshToken == "" {
		return fmt.Errorf("GMAIL_REFRESH_TOKEN environment variable is not set")
	}
	if c.Gmail.FromEmail == "" {
		return fmt.Errorf("GMAIL_FROM_EMAIL environment variable is not set")
	}
	return nil
}

// ValidateNotion reports an error when the Notion connector settings are
// missing. Checked when a sync is requested.
func (c *Config) ValidateNotion() error {
	if c.Notion.APIKey == "" || c.Notion.DatabaseID == "" {
		return fmt.Errorf("NOTION_API_KEY / NOTION_DATABASE_ID is not set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
