package gitcmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edgarborja/SparkleShare/internal/utils"
)

// Repo is a Runner bound to an opened git working copy, with direct
// access to the repository's private metadata directory.
type Repo struct {
	*Runner
	gitDir string
}

// Open verifies that workDir is a git working copy and resolves its
// metadata directory.
func Open(ctx context.Context, workDir string) (*Repo, error) {
	runner, err := NewRunner(workDir)
	if err != nil {
		return nil, err
	}

	res, err := runner.Run(ctx, "rev-parse", "--git-dir")
	if err != nil {
		return nil, err
	}
	if !res.Ok() {
		return nil, fmt.Errorf("not a git repository: %s", workDir)
	}

	gitDir := strings.TrimSpace(res.Stdout)
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(workDir, gitDir)
	}

	return &Repo{Runner: runner, gitDir: gitDir}, nil
}

// GitDir returns the absolute path of the repository metadata directory.
func (r *Repo) GitDir() string {
	return r.gitDir
}

// CurrentBranch is a pure query for the checked-out branch name.
// It never mutates the working copy.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	res, err := r.Run(ctx, "symbolic-ref", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	if res.Ok() {
		return strings.TrimSpace(res.Stdout), nil
	}

	// detached head, fall back to the commit id
	res, err = r.Run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	if !res.Ok() {
		return "", fmt.Errorf("cannot resolve HEAD: %s", strings.TrimSpace(res.Stderr))
	}
	return strings.TrimSpace(res.Stdout), nil
}

// Head returns the commit id the working copy is currently at.
func (r *Repo) Head(ctx context.Context) (string, error) {
	res, err := r.Run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	if !res.Ok() {
		return "", fmt.Errorf("cannot resolve HEAD: %s", strings.TrimSpace(res.Stderr))
	}
	return strings.TrimSpace(res.Stdout), nil
}

// RemoteURL returns the configured origin URL, or "" when unset.
func (r *Repo) RemoteURL(ctx context.Context) string {
	res, err := r.Run(ctx, "config", "remote.origin.url")
	if err != nil || !res.Ok() {
		return ""
	}
	return strings.TrimSpace(res.Stdout)
}

// InMerge reports whether the working copy is mid-merge, detected
// through the MERGE_HEAD marker file.
func (r *Repo) InMerge() bool {
	return utils.FileExists(filepath.Join(r.gitDir, "MERGE_HEAD"))
}

// AbortMerge discards an in-progress merge.
func (r *Repo) AbortMerge(ctx context.Context) error {
	res, err := r.Run(ctx, "merge", "--abort")
	if err != nil {
		return err
	}
	if !res.Ok() {
		// a vanished MERGE_HEAD is fine, anything else is not
		if r.InMerge() {
			return fmt.Errorf("merge abort failed: %s", strings.TrimSpace(res.Stderr))
		}
	}
	return nil
}

// SetIgnoreCase toggles path case-sensitivity for the working copy.
func (r *Repo) SetIgnoreCase(ctx context.Context, ignore bool) error {
	value := "false"
	if ignore {
		value = "true"
	}
	res, err := r.Run(ctx, "config", "core.ignorecase", value)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("config core.ignorecase: %s", strings.TrimSpace(res.Stderr))
	}
	return nil
}

// SetIdentity configures the commit author for this working copy.
func (r *Repo) SetIdentity(ctx context.Context, name, email string) error {
	for _, kv := range [][2]string{{"user.name", name}, {"user.email", email}} {
		res, err := r.Run(ctx, "config", kv[0], kv[1])
		if err != nil {
			return err
		}
		if !res.Ok() {
			return fmt.Errorf("config %s: %s", kv[0], strings.TrimSpace(res.Stderr))
		}
	}
	return nil
}

// ShowFile writes the content of path at revision into destination.
func (r *Repo) ShowFile(ctx context.Context, path, revision, destination string) error {
	res, err := r.Run(ctx, "show", revision+":"+path)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("show %s:%s: %s", revision, path, strings.TrimSpace(res.Stderr))
	}
	if err := utils.EnsureParent(destination); err != nil {
		return err
	}
	return os.WriteFile(destination, []byte(res.Stdout), 0o644)
}

// Checkout moves the working copy to the given revision or branch.
func (r *Repo) Checkout(ctx context.Context, revision string) error {
	res, err := r.Run(ctx, "checkout", revision)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("checkout %s: %s", revision, strings.TrimSpace(res.Stderr))
	}
	return nil
}
