package gitsync

import (
	"bufio"
	"log/slog"
	"strings"
	"time"
)

// Historical log text is one block per commit: a header (commit id,
// author, date with UTC offset) followed by file-change records, each
// prefixed with the ':' structural marker. The parser is an explicit
// line grammar; a line either matches a rule or is skipped.

const (
	// maxChangesPerCommit bounds memory on abnormally large commits.
	// Records beyond the cap are dropped, not an error.
	maxChangesPerCommit = 250

	commitPrefix = "commit "
	authorPrefix = "Author: "
	datePrefix   = "Date:   "
	recordMarker = ':'

	gitDateLayout = "2006-01-02 15:04:05 -0700"
)

// ParseLog parses raw historical log text into one ChangeSet per
// commit, newest first, without any grouping.
func ParseLog(out, remoteURL string) []ChangeSet {
	var sets []ChangeSet
	var cur *ChangeSet
	dropped := 0

	flush := func() {
		if cur != nil {
			if dropped > 0 {
				slog.Debug("changelog records dropped", "revision", cur.Revision, "dropped", dropped)
			}
			sets = append(sets, *cur)
		}
		cur = nil
		dropped = 0
	}

	scanner := bufio.NewScanner(strings.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, commitPrefix):
			rev := strings.TrimSpace(strings.TrimPrefix(line, commitPrefix))
			if !isRevision(rev) {
				continue
			}
			flush()
			cur = &ChangeSet{Revision: rev, RemoteURL: remoteURL}

		case cur != nil && strings.HasPrefix(line, authorPrefix):
			cur.User = parseAuthor(strings.TrimPrefix(line, authorPrefix))

		case cur != nil && strings.HasPrefix(line, datePrefix):
			cur.Timestamp = parseCommitDate(strings.TrimSpace(strings.TrimPrefix(line, datePrefix)))

		case cur != nil && len(line) > 0 && line[0] == recordMarker:
			if len(cur.Changes) >= maxChangesPerCommit {
				dropped++
				continue
			}
			if change, ok := parseRecord(line, cur.Timestamp); ok {
				cur.Changes = append(cur.Changes, change)
			}
		}
	}
	flush()

	return sets
}

// isRevision reports whether s is a full 40-hex commit id.
func isRevision(s string) bool {
	if len(s) != 40 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// parseAuthor splits `Name <email>` into a User.
func parseAuthor(s string) User {
	s = strings.TrimSpace(s)
	open := strings.LastIndex(s, " <")
	if open < 0 || !strings.HasSuffix(s, ">") {
		return User{Name: s}
	}
	return User{
		Name:  s[:open],
		Email: s[open+2 : len(s)-1],
	}
}

// parseCommitDate parses the embedded date with its UTC offset and
// renormalizes it into the observer's local time: subtract the
// commit's offset, then add the observer's current one.
func parseCommitDate(s string) time.Time {
	t, err := time.Parse(gitDateLayout, s)
	if err != nil {
		slog.Debug("changelog date unparsable", "value", s)
		return time.Time{}
	}
	return toObserverTime(t)
}

func toObserverTime(t time.Time) time.Time {
	_, localOff := time.Now().Zone()
	adj := t.UTC().Add(time.Duration(localOff) * time.Second)
	return time.Date(adj.Year(), adj.Month(), adj.Day(),
		adj.Hour(), adj.Minute(), adj.Second(), adj.Nanosecond(), time.Local)
}

// parseRecord parses one file-change record. Field positions after the
// structural marker: modes and object ids separated by spaces, then
// the status letter, then a tab and the path (two tab-separated paths
// for a rename).
func parseRecord(line string, ts time.Time) (Change, bool) {
	head, paths, ok := strings.Cut(line, "\t")
	if !ok {
		return Change{}, false
	}

	fields := strings.Fields(head)
	if len(fields) < 2 {
		return Change{}, false
	}
	status := fields[len(fields)-1]
	if status == "" {
		return Change{}, false
	}

	change := Change{Timestamp: ts}
	switch status[0] {
	case 'R':
		oldPath, newPath, ok := splitRecordPaths(paths)
		if !ok {
			return Change{}, false
		}
		change.Type = ChangeMoved
		change.Path, change.IsFolder = trimPlaceholder(DecodePath(oldPath))
		change.MovedToPath, _ = trimPlaceholder(DecodePath(newPath))
	case 'M':
		change.Type = ChangeEdited
		change.Path, change.IsFolder = trimPlaceholder(DecodePath(paths))
	case 'D':
		change.Type = ChangeDeleted
		change.Path, change.IsFolder = trimPlaceholder(DecodePath(paths))
	default:
		change.Type = ChangeAdded
		change.Path, change.IsFolder = trimPlaceholder(DecodePath(paths))
	}
	return change, true
}

// splitRecordPaths separates the two paths of a rename record. The
// canonical form is tab-separated; an arrow marker from textual diffs
// is tolerated and stripped.
func splitRecordPaths(s string) (string, string, bool) {
	if oldPath, newPath, ok := strings.Cut(s, "\t"); ok {
		return oldPath, newPath, true
	}
	if oldPath, newPath, ok := strings.Cut(s, " => "); ok {
		return oldPath, newPath, true
	}
	return "", "", false
}

// GroupByUserDay merges consecutive commits by the same author on the
// same calendar day into one ChangeSet. Input must be newest first, as
// parsed. The merged set keeps the later commit's revision and
// timestamp; the earliest merged moment is recorded as FirstTimestamp.
func GroupByUserDay(sets []ChangeSet) []ChangeSet {
	var out []ChangeSet
	for _, set := range sets {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if last.User.Name == set.User.Name && sameDay(last.Timestamp, set.Timestamp) {
				last.Changes = append(last.Changes, set.Changes...)
				last.FirstTimestamp = set.Timestamp
				continue
			}
		}
		out = append(out, set)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
