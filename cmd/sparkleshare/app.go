package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"

	"github.com/edgarborja/SparkleShare/internal/gitcmd"
	"github.com/edgarborja/SparkleShare/internal/gitsync"
	"github.com/edgarborja/SparkleShare/internal/utils"
)

const lockFileName = "sparkleshare.lock"

// app wires one opened working copy: the git runner, the sync
// controller and the repository lock that keeps invocations
// non-overlapping.
type app struct {
	repo    *gitcmd.Repo
	ctrl    *gitsync.Controller
	history *gitsync.History
	lock    *flock.Flock
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := currentConfig()
	if err != nil {
		return nil, err
	}

	// the repo dir may come from config or env as "~/..." or relative
	repoDir, err := utils.ResolvePath(cfg.RepoDir)
	if err != nil {
		return nil, fmt.Errorf("repository path %q: %w", cfg.RepoDir, err)
	}

	repo, err := gitcmd.Open(ctx, repoDir)
	if err != nil {
		return nil, err
	}

	session := gitsync.NewSession(gitsync.User{Name: cfg.Name, Email: cfg.Email}, cfg.Encrypted)
	sentinels := gitsync.NewSentinels(repo.WorkDir(), repo.GitDir())
	ctrl := gitsync.NewController(repo, session, sentinels,
		gitsync.WithProgress(printProgress),
		gitsync.WithConflictNotify(func() {
			fmt.Println(cyan("conflict resolved, local copy preserved"))
		}),
	)

	return &app{
		repo:    repo,
		ctrl:    ctrl,
		history: gitsync.NewHistory(repo),
		lock:    flock.New(filepath.Join(repo.GitDir(), lockFileName)),
	}, nil
}

// acquire takes the repository lock or fails fast when another
// instance is mid-sync.
func (a *app) acquire() error {
	ok, err := a.lock.TryLock()
	if err != nil {
		return fmt.Errorf("repository lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another sync is already running for %s", a.repo.WorkDir())
	}
	return nil
}

func (a *app) release() {
	_ = a.lock.Unlock()
}

func printProgress(p gitsync.SyncProgress) {
	if p.Speed > 0 {
		fmt.Printf("\r%3.0f%%  %s/s   ", p.Percentage, humanize.Bytes(uint64(p.Speed)))
	} else {
		fmt.Printf("\r%3.0f%%          ", p.Percentage)
	}
}
