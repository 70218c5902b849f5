package gitsync

import (
	"strings"
	"time"
)

// ParseStatus turns working-tree status output (two-letter code, a
// space, then the path) into pending Change records. Rename lines use
// the literal form `old -> new`. Lines that do not follow the grammar
// are skipped, never fatal.
func ParseStatus(out string) []Change {
	var changes []Change
	now := time.Now()

	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}

		code := line[:2]
		rest := line[3:]

		letter := code[0]
		if letter == ' ' {
			letter = code[1]
		}

		change := Change{Timestamp: now}
		switch letter {
		case 'R':
			oldPath, newPath, ok := splitRename(rest)
			if !ok {
				continue
			}
			change.Type = ChangeMoved
			change.Path, change.IsFolder = trimPlaceholder(DecodePath(oldPath))
			change.MovedToPath, _ = trimPlaceholder(DecodePath(newPath))
		case 'M':
			change.Type = ChangeEdited
			change.Path, change.IsFolder = trimPlaceholder(DecodePath(rest))
		case 'D':
			change.Type = ChangeDeleted
			change.Path, change.IsFolder = trimPlaceholder(DecodePath(rest))
		default:
			change.Type = ChangeAdded
			change.Path, change.IsFolder = trimPlaceholder(DecodePath(rest))
		}

		changes = append(changes, change)
	}
	return changes
}

// splitRename breaks a `old -> new` record into its two paths.
func splitRename(s string) (string, string, bool) {
	idx := strings.Index(s, " -> ")
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], s[idx+4:], true
}

// CommitMessage synthesizes a human-readable commit message from
// pending changes: one line per change, a `<`/`>` pair for moves.
// It returns "" when there is nothing pending.
func CommitMessage(changes []Change) string {
	if len(changes) == 0 {
		return ""
	}

	var b strings.Builder
	for _, c := range changes {
		switch c.Type {
		case ChangeAdded:
			b.WriteString("+ '" + c.Path + "'\n")
		case ChangeEdited:
			b.WriteString("/ '" + c.Path + "'\n")
		case ChangeDeleted:
			b.WriteString("- '" + c.Path + "'\n")
		case ChangeMoved:
			b.WriteString("< '" + c.Path + "'\n")
			b.WriteString("> '" + c.MovedToPath + "'\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
