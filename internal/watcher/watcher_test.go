package watcher

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWatcher_IgnoredPaths(t *testing.T) {
	w := New("/tmp/share", nil)
	w.AddIgnores("build/**")

	tests := []struct {
		rel  string
		want bool
	}{
		{".git/HEAD", true},
		{".git/objects/ab/cdef", true},
		{"photos/.empty", true},
		{".empty", true},
		{"notes.swp", true},
		{"docs/.DS_Store", true},
		{"build/out.bin", true},
		{"notes.txt", false},
		{"docs/guide.md", false},
		{"gitlog.txt", false},
		{".", true},
		{"../outside.txt", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, w.ignored(tt.rel), tt.rel)
	}
}

func TestWatcher_DebounceCoalescesBursts(t *testing.T) {
	var mu sync.Mutex
	var got []string

	w := New("/tmp/share", func(relPath string) {
		mu.Lock()
		got = append(got, relPath)
		mu.Unlock()
	})
	w.SetDebounce(20 * time.Millisecond)

	// a save burst for one path plus a single event for another
	w.debounceEvent("notes.txt")
	w.debounceEvent("notes.txt")
	w.debounceEvent("notes.txt")
	w.debounceEvent("other.txt")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"notes.txt", "other.txt"}, got)
}

func TestWatcher_StopCancelsPendingTimers(t *testing.T) {
	var fired atomic.Int32

	w := New("/tmp/share", func(string) { fired.Add(1) })
	w.SetDebounce(50 * time.Millisecond)

	w.debounceEvent("pending.txt")
	w.stopTimers()
	w.Wait()

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestWatcher_WaitDrainsFiredCallbacks(t *testing.T) {
	var fired atomic.Int32

	w := New("/tmp/share", func(string) { fired.Add(1) })
	w.SetDebounce(10 * time.Millisecond)

	w.debounceEvent("notes.txt")
	w.Wait()

	assert.Equal(t, int32(1), fired.Load())
}
