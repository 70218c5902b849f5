package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := &Config{
		RepoDir:   "/home/alice/SparkleShare",
		Name:      "alice",
		Email:     "alice@example.org",
		Encrypted: true,
	}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.RepoDir, loaded.RepoDir)
	assert.Equal(t, cfg.Name, loaded.Name)
	assert.Equal(t, cfg.Email, loaded.Email)
	assert.True(t, loaded.Encrypted)
	assert.Equal(t, path, loaded.Path)
}

func TestConfig_LoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{RepoDir: "/x", Name: "alice", Email: "a@example.org"}, false},
		{"missing repo dir", Config{Name: "alice", Email: "a@example.org"}, true},
		{"missing name", Config{RepoDir: "/x", Email: "a@example.org"}, true},
		{"bad email", Config{RepoDir: "/x", Name: "alice", Email: "not-an-email"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
