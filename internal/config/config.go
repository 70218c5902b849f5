package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"

	"github.com/edgarborja/SparkleShare/internal/utils"
)

var (
	home, _           = os.UserHomeDir()
	DefaultConfigPath = filepath.Join(home, ".sparkleshare", "config.json")
	DefaultRepoDir    = filepath.Join(home, "SparkleShare")
)

// Config describes one synchronized working copy and the identity used
// for its commits.
type Config struct {
	RepoDir   string `json:"repo_dir"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Encrypted bool   `json:"encrypted"`
	Path      string `json:"-"`
}

func (c *Config) Validate() error {
	if c.RepoDir == "" {
		return errors.New("repo dir is required")
	}
	if c.Name == "" {
		return errors.New("name is required")
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return fmt.Errorf("invalid email %q: %w", c.Email, err)
	}
	return nil
}

func (c *Config) Save(path string) error {
	if err := utils.EnsureParent(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.Path = path
	return &cfg, nil
}
