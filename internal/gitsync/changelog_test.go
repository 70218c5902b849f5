package gitsync

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitBlock(rev, author, email, date string, records ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "commit %s\n", rev)
	fmt.Fprintf(&b, "Author: %s <%s>\n", author, email)
	fmt.Fprintf(&b, "Date:   %s\n", date)
	b.WriteString("\n    some message\n\n")
	for _, r := range records {
		b.WriteString(r + "\n")
	}
	return b.String()
}

func rev(c byte) string {
	return strings.Repeat(string(c), 40)
}

func TestParseLog_SingleCommit(t *testing.T) {
	out := commitBlock(rev('a'), "Alice", "alice@example.org", "2024-03-01 10:00:00 +0000",
		":000000 100644 0000000 1111111 A\tnotes.txt",
		":100644 100644 1111111 2222222 M\tdocs/guide.md",
		":100644 000000 2222222 0000000 D\told.txt",
		":100644 100644 3333333 3333333 R100\tfrom.txt\tto.txt",
	)

	sets := ParseLog(out, "git@example.org:share.git")
	require.Len(t, sets, 1)

	set := sets[0]
	assert.Equal(t, rev('a'), set.Revision)
	assert.Equal(t, User{Name: "Alice", Email: "alice@example.org"}, set.User)
	assert.Equal(t, "git@example.org:share.git", set.RemoteURL)
	assert.True(t, set.FirstTimestamp.IsZero())

	require.Len(t, set.Changes, 4)
	assert.Equal(t, ChangeAdded, set.Changes[0].Type)
	assert.Equal(t, "notes.txt", set.Changes[0].Path)
	assert.Equal(t, ChangeEdited, set.Changes[1].Type)
	assert.Equal(t, ChangeDeleted, set.Changes[2].Type)
	assert.Equal(t, ChangeMoved, set.Changes[3].Type)
	assert.Equal(t, "from.txt", set.Changes[3].Path)
	assert.Equal(t, "to.txt", set.Changes[3].MovedToPath)
}

func TestParseLog_TimestampInObserverTime(t *testing.T) {
	out := commitBlock(rev('a'), "Alice", "a@example.org", "2024-03-01 18:30:00 +0230",
		":000000 100644 0000000 1111111 A\tnotes.txt",
	)

	sets := ParseLog(out, "")
	require.Len(t, sets, 1)

	parsed, err := time.Parse(gitDateLayout, "2024-03-01 18:30:00 +0230")
	require.NoError(t, err)
	assert.Equal(t, toObserverTime(parsed), sets[0].Timestamp)
	assert.Equal(t, time.Local, sets[0].Timestamp.Location())
}

func TestParseLog_CapsRecordsPerCommit(t *testing.T) {
	records := make([]string, 300)
	for i := range records {
		records[i] = fmt.Sprintf(":000000 100644 0000000 1111111 A\tfile%03d.txt", i)
	}
	out := commitBlock(rev('a'), "Alice", "a@example.org", "2024-03-01 10:00:00 +0000", records...)

	sets := ParseLog(out, "")
	require.Len(t, sets, 1)
	assert.Len(t, sets[0].Changes, 250)
	assert.Equal(t, "file000.txt", sets[0].Changes[0].Path)
	assert.Equal(t, "file249.txt", sets[0].Changes[249].Path)
}

func TestParseLog_OctalPathsAndPlaceholders(t *testing.T) {
	out := commitBlock(rev('a'), "Alice", "a@example.org", "2024-03-01 10:00:00 +0000",
		":000000 100644 0000000 1111111 A\t\"caf\\303\\251.txt\"",
		":000000 100644 0000000 1111111 A\tphotos/2024/.empty",
	)

	sets := ParseLog(out, "")
	require.Len(t, sets, 1)
	require.Len(t, sets[0].Changes, 2)

	assert.Equal(t, "café.txt", sets[0].Changes[0].Path)
	assert.False(t, sets[0].Changes[0].IsFolder)

	assert.Equal(t, "photos/2024", sets[0].Changes[1].Path)
	assert.True(t, sets[0].Changes[1].IsFolder)
}

func TestParseLog_SkipsGarbage(t *testing.T) {
	out := "commit not-a-revision\n" +
		"random noise\n" +
		commitBlock(rev('b'), "Bob", "b@example.org", "2024-03-01 10:00:00 +0000",
			":000000 100644 0000000 1111111 A\tok.txt",
			"::: broken record without tab",
		)

	sets := ParseLog(out, "")
	require.Len(t, sets, 1)
	assert.Equal(t, rev('b'), sets[0].Revision)
	require.Len(t, sets[0].Changes, 1)
	assert.Equal(t, "ok.txt", sets[0].Changes[0].Path)
}

func TestGroupByUserDay_MergesConsecutiveSameUserSameDay(t *testing.T) {
	// newest first, seconds apart so any observer offset keeps them on
	// one calendar day
	out := commitBlock(rev('a'), "alice", "a@example.org", "2024-03-01 10:00:05 +0000",
		":000000 100644 0000000 1111111 A\tsecond.txt",
	) + commitBlock(rev('b'), "alice", "a@example.org", "2024-03-01 10:00:00 +0000",
		":000000 100644 0000000 1111111 A\tfirst.txt",
	)

	sets := GroupByUserDay(ParseLog(out, ""))
	require.Len(t, sets, 1, "same user, same day must merge")

	set := sets[0]
	assert.Equal(t, rev('a'), set.Revision, "representative revision is the later commit")

	later, _ := time.Parse(gitDateLayout, "2024-03-01 10:00:05 +0000")
	earlier, _ := time.Parse(gitDateLayout, "2024-03-01 10:00:00 +0000")
	assert.Equal(t, toObserverTime(later), set.Timestamp)
	assert.Equal(t, toObserverTime(earlier), set.FirstTimestamp)

	require.Len(t, set.Changes, 2)
	assert.Equal(t, "second.txt", set.Changes[0].Path, "discovery order is kept")
	assert.Equal(t, "first.txt", set.Changes[1].Path)
}

func TestGroupByUserDay_KeepsDifferentUsersApart(t *testing.T) {
	out := commitBlock(rev('a'), "alice", "a@example.org", "2024-03-01 10:00:05 +0000",
		":000000 100644 0000000 1111111 A\ta.txt",
	) + commitBlock(rev('b'), "bob", "b@example.org", "2024-03-01 10:00:00 +0000",
		":000000 100644 0000000 1111111 A\tb.txt",
	)

	sets := GroupByUserDay(ParseLog(out, ""))
	require.Len(t, sets, 2)
	assert.True(t, sets[0].FirstTimestamp.IsZero())
	assert.True(t, sets[1].FirstTimestamp.IsZero())
}

func TestGroupByUserDay_KeepsDifferentDaysApart(t *testing.T) {
	// 48 hours apart, different days under any offset
	out := commitBlock(rev('a'), "alice", "a@example.org", "2024-03-03 10:00:00 +0000",
		":000000 100644 0000000 1111111 A\ta.txt",
	) + commitBlock(rev('b'), "alice", "a@example.org", "2024-03-01 10:00:00 +0000",
		":000000 100644 0000000 1111111 A\tb.txt",
	)

	sets := GroupByUserDay(ParseLog(out, ""))
	require.Len(t, sets, 2)
}

func TestGroupByUserDay_ThreeWayMergeSpansEarliest(t *testing.T) {
	out := commitBlock(rev('a'), "alice", "a@example.org", "2024-03-01 10:00:10 +0000",
		":000000 100644 0000000 1111111 A\tthird.txt",
	) + commitBlock(rev('b'), "alice", "a@example.org", "2024-03-01 10:00:05 +0000",
		":000000 100644 0000000 1111111 A\tsecond.txt",
	) + commitBlock(rev('c'), "alice", "a@example.org", "2024-03-01 10:00:00 +0000",
		":000000 100644 0000000 1111111 A\tfirst.txt",
	)

	sets := GroupByUserDay(ParseLog(out, ""))
	require.Len(t, sets, 1)

	earliest, _ := time.Parse(gitDateLayout, "2024-03-01 10:00:00 +0000")
	assert.Equal(t, toObserverTime(earliest), sets[0].FirstTimestamp)
	assert.Len(t, sets[0].Changes, 3)
}
