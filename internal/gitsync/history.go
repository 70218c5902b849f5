package gitsync

import (
	"context"
	"fmt"
	"strings"
)

const (
	// historyWindow bounds full-history queries to the recent past.
	historyWindow = "1.month"

	// fallbackCommitCount is used when the windowed query comes back
	// empty: re-query bounded by commit count instead of time.
	fallbackCommitCount = 75
)

var logArgs = []string{
	"log",
	"--raw",
	"--find-renames",
	"--date=iso",
	"--format=medium",
	"--no-color",
	"--no-merges",
}

// History answers structured queries over the repository's commit log.
type History struct {
	git Git
}

func NewHistory(git Git) *History {
	return &History{git: git}
}

// ChangeSets returns the recent full history, grouped by user and
// calendar day. An empty windowed result falls back to the most recent
// commits regardless of age.
func (h *History) ChangeSets(ctx context.Context) ([]ChangeSet, error) {
	remote := h.git.RemoteURL(ctx)

	out, err := h.rawLog(ctx, "--since="+historyWindow)
	if err != nil {
		return nil, err
	}
	sets := GroupByUserDay(ParseLog(out, remote))
	if len(sets) > 0 {
		return sets, nil
	}

	out, err = h.rawLog(ctx, fmt.Sprintf("-%d", fallbackCommitCount))
	if err != nil {
		return nil, err
	}
	return GroupByUserDay(ParseLog(out, remote)), nil
}

// ChangeSetsForPath returns the ungrouped history of a single path.
// Deletions and moves of the queried path itself are suppressed so the
// result reflects only the file's content history.
func (h *History) ChangeSetsForPath(ctx context.Context, path string) ([]ChangeSet, error) {
	out, err := h.rawLog(ctx, "--follow", "--", path)
	if err != nil {
		return nil, err
	}

	sets := ParseLog(out, h.git.RemoteURL(ctx))
	filtered := sets[:0]
	for _, set := range sets {
		kept := set.Changes[:0]
		for _, c := range set.Changes {
			if (c.Type == ChangeDeleted || c.Type == ChangeMoved) && c.Path == path {
				continue
			}
			kept = append(kept, c)
		}
		set.Changes = kept
		if len(set.Changes) > 0 {
			filtered = append(filtered, set)
		}
	}
	return filtered, nil
}

func (h *History) rawLog(ctx context.Context, extra ...string) (string, error) {
	args := append(append([]string{}, logArgs...), extra...)
	res, err := h.git.Run(ctx, args...)
	if err != nil {
		return "", err
	}
	if !res.Ok() {
		return "", fmt.Errorf("log query failed: %s", strings.TrimSpace(res.Stderr))
	}
	return res.Stdout, nil
}
