package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GMAIL_REDIRECT_URI", "")
	t.Setenv("FIREBASE_PROJECT_ID", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:3000/api/auth/callback/google", cfg.Gmail.RedirectURI)
	assert.Error(t, cfg.ValidateFirestore())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FIREBASE_PROJECT_ID", "my-project")
	t.Setenv("GMAIL_CLIENT_ID", "cid")
	t.Setenv("GMAIL_CLIENT_SECRET", "secret")
	t.Setenv("GMAIL_REFRESH_TOKEN", "refresh")
	t.Setenv("GMAIL_FROM_EMAIL", "me@example.com")
	t.Setenv("NOTION_API_KEY", "ntn-key")
	t.Setenv("NOTION_DATABASE_ID", "db-id")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "my-project", cfg.Firestore.ProjectID)
	assert.NoError(t, cfg.ValidateFirestore())
	assert.NoError(t, cfg.ValidateGmail())
	assert.NoError(t, cfg.ValidateNotion())
}

func TestValidateGmailMissingPieces(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.ValidateGmail())

	cfg.Gmail.ClientID = "cid"
	cfg.Gmail.ClientSecret = "secret"
	err := cfg.ValidateGmail()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GMAIL_REFRESH_TOKEN")

	cfg.Gmail.RefreshToken = "refresh"
	err = cfg.ValidateGmail()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GMAIL_FROM_EMAIL")

	cfg.Gmail.FromEmail = "me@example.com"
	assert.NoError(t, cfg.ValidateGmail())
}

func TestValidateNotion(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.ValidateNotion())
	cfg.Notion.APIKey = "k"
	assert.Error(t, cfg.ValidateNotion())
	cfg.Notion.DatabaseID = "db"
	assert.NoError(t, cfg.ValidateNotion())
}
