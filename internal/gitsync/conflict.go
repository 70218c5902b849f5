package gitsync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// conflictCommitMessage is the fixed system-authored message for the
// single commit that closes a resolution pass.
const conflictCommitMessage = "Conflict resolution"

const conflictCopyTimeFormat = "2006-01-02 15h04"

// ConflictResolver reconciles per-path merge conflicts into
// deterministic outcomes. One Resolve call is one pass over the
// current pending-change lines.
type ConflictResolver struct {
	git     Git
	session *Session

	// now is split out for tests.
	now func() time.Time
}

func NewConflictResolver(git Git, session *Session) *ConflictResolver {
	return &ConflictResolver{git: git, session: session, now: time.Now}
}

// Resolve processes every pending-change line by the decision table:
//
//	DD                both deleted, nothing to do
//	AU UA AA UU       content conflict: preserve local under a suffixed
//	                  copy, impose the remote content
//	DU                remote modified, local deleted: stage the
//	                  restored remote content as-is
//	UD                local modified, remote deleted: impose the remote
//	                  (deleted) state
//	??                untracked, left alone to be staged
//
// Placeholder sentinel files are always kept locally verbatim
// regardless of their code and never count as a conflict. The pass
// ends with everything staged and one system-authored commit. The
// returned bool reports whether a true content conflict was handled.
func (cr *ConflictResolver) Resolve(ctx context.Context) (bool, error) {
	res, err := cr.git.Run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	if !res.Ok() {
		return false, fmt.Errorf("status query failed: %s", strings.TrimSpace(res.Stderr))
	}

	conflict := false
	for _, line := range strings.Split(res.Stdout, "\n") {
		if len(line) < 4 {
			continue
		}
		code := line[:2]
		path := DecodePath(line[3:])

		if isPlaceholderPath(path) {
			// keep the local sentinel verbatim; its dot-name keeps it
			// hidden once restored
			if err := cr.keepLocal(ctx, path); err != nil {
				return conflict, err
			}
			continue
		}

		switch code {
		case "DD":
			// both sides deleted, nothing to do

		case "AU", "UA", "AA", "UU":
			if err := cr.resolveBothModified(ctx, path); err != nil {
				return conflict, err
			}
			conflict = true

		case "DU":
			if err := cr.stage(ctx, path); err != nil {
				return conflict, err
			}

		case "UD":
			if err := cr.keepRemote(ctx, path); err != nil {
				return conflict, err
			}

		case "??":
			// new untracked file, staged below
		}
	}

	if err := cr.stageAll(ctx); err != nil {
		return conflict, err
	}
	if err := cr.commit(ctx); err != nil {
		return conflict, err
	}
	return conflict, nil
}

// resolveBothModified keeps the local content as a new suffixed path,
// then overwrites the working path with the remote content.
func (cr *ConflictResolver) resolveBothModified(ctx context.Context, path string) error {
	if err := cr.keepLocal(ctx, path); err != nil {
		return err
	}

	copyPath := conflictCopyPath(path, cr.session.User.Name, cr.now())
	abs := filepath.Join(cr.git.WorkDir(), path)
	absCopy := filepath.Join(cr.git.WorkDir(), copyPath)
	if err := os.Rename(abs, absCopy); err != nil {
		// the move is not atomic; losing the local copy here is
		// logged, not fatal
		slog.Warn("conflict copy move failed", "path", path, "error", err)
	} else {
		slog.Info("conflict: local copy preserved", "path", path, "copy", copyPath)
	}

	return cr.keepRemote(ctx, path)
}

func (cr *ConflictResolver) keepLocal(ctx context.Context, path string) error {
	res, err := cr.git.Run(ctx, "checkout", "--ours", "--", path)
	if err != nil {
		return err
	}
	if !res.Ok() {
		slog.Debug("checkout --ours failed", "path", path, "stderr", strings.TrimSpace(res.Stderr))
	}
	return nil
}

func (cr *ConflictResolver) keepRemote(ctx context.Context, path string) error {
	res, err := cr.git.Run(ctx, "checkout", "--theirs", "--", path)
	if err != nil {
		return err
	}
	if !res.Ok() {
		slog.Debug("checkout --theirs failed", "path", path, "stderr", strings.TrimSpace(res.Stderr))
	}
	return nil
}

func (cr *ConflictResolver) stage(ctx context.Context, path string) error {
	res, err := cr.git.Run(ctx, "add", "--", path)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("stage %s: %s", path, strings.TrimSpace(res.Stderr))
	}
	return nil
}

func (cr *ConflictResolver) stageAll(ctx context.Context) error {
	res, err := cr.git.Run(ctx, "add", "--all")
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("stage all: %s", strings.TrimSpace(res.Stderr))
	}
	return nil
}

func (cr *ConflictResolver) commit(ctx context.Context) error {
	if err := cr.session.EnsureIdentity(ctx, cr.git); err != nil {
		return err
	}
	res, err := cr.git.Run(ctx, "commit", "-m", conflictCommitMessage)
	if err != nil {
		return err
	}
	if !res.Ok() {
		// nothing staged is fine, the pass simply had no effect
		slog.Debug("resolution commit skipped", "stderr", strings.TrimSpace(res.Stderr))
	}
	return nil
}

// conflictCopyPath inserts a "(user, timestamp)" suffix before the
// extension: notes.txt -> notes (alice, 2024-03-01 14h05).txt
func conflictCopyPath(path, user string, t time.Time) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s (%s, %s)%s", base, user, t.Format(conflictCopyTimeFormat), ext)
}
