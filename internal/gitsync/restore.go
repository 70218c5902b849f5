package gitsync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/edgarborja/SparkleShare/internal/utils"
)

// RestoreFile retrieves the byte-for-byte content of path at revision
// into destination.
//
// When the repository content is encrypted at rest, content-by-revision
// retrieval cannot decrypt, so the historical revision is checked out
// into the working copy, the resulting file is moved to destination,
// and the current revision is checked out again. The intermediate move
// can fail; that is logged and the working copy still restored.
func (c *Controller) RestoreFile(ctx context.Context, path, revision, destination string) error {
	if !c.session.Encrypted {
		return c.git.ShowFile(ctx, path, revision, destination)
	}

	current, err := c.git.CurrentBranch(ctx)
	if err != nil {
		return fmt.Errorf("restore: resolve current revision: %w", err)
	}

	if err := c.git.Checkout(ctx, revision); err != nil {
		return fmt.Errorf("restore: checkout %s: %w", revision, err)
	}

	if err := utils.EnsureParent(destination); err != nil {
		slog.Warn("restore destination", "error", err)
	}
	if err := os.Rename(filepath.Join(c.git.WorkDir(), path), destination); err != nil {
		// non-atomic two-step procedure; a failed move loses the copy
		// but must not leave the working copy on the old revision
		slog.Warn("restore move failed", "path", path, "error", err)
	}

	if err := c.git.Checkout(ctx, current); err != nil {
		return fmt.Errorf("restore: re-checkout %s: %w", current, err)
	}
	return nil
}
