package gitsync

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

// State tracks where a sync operation currently is.
type State int

const (
	StateIdle State = iota
	StateStaging
	StateCommitting
	StateTransferring
	StateMerging
	StateConflictResolving
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStaging:
		return "staging"
	case StateCommitting:
		return "committing"
	case StateTransferring:
		return "transferring"
	case StateMerging:
		return "merging"
	case StateConflictResolving:
		return "resolving"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// maxResolveAttempts bounds the conflict-resolution retry loop. The
// loop used to be unbounded on transient I/O errors; a persistent
// failure now surfaces as a gave-up outcome instead of spinning.
const maxResolveAttempts = 10

// Controller drives push and pull synchronization against the remote.
// Operations are synchronous and must not overlap for the same working
// copy; serializing concurrent callers is the caller's job.
type Controller struct {
	git       Git
	session   *Session
	sentinels *Sentinels
	resolver  *ConflictResolver

	onProgress ProgressFunc
	onConflict func()

	state     State
	lastError ErrorKind
	gaveUp    bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithProgress installs a callback for transfer progress updates.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Controller) { c.onProgress = fn }
}

// WithConflictNotify installs a callback fired after a resolution pass
// that handled at least one true content conflict.
func WithConflictNotify(fn func()) Option {
	return func(c *Controller) { c.onConflict = fn }
}

func NewController(git Git, session *Session, sentinels *Sentinels, opts ...Option) *Controller {
	c := &Controller{
		git:       git,
		session:   session,
		sentinels: sentinels,
		resolver:  NewConflictResolver(git, session),
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the state the last operation reached.
func (c *Controller) State() State {
	return c.state
}

// Error returns the last operation's classified error, ErrNone on
// success.
func (c *Controller) Error() ErrorKind {
	return c.lastError
}

// GaveUp reports whether the last operation abandoned conflict
// resolution after exhausting its retry budget.
func (c *Controller) GaveUp() bool {
	return c.gaveUp
}

// Sentinels exposes the durable marker state of this working copy.
func (c *Controller) Sentinels() *Sentinels {
	return c.sentinels
}

// SyncUp stages all local modifications, commits them under a caller
// message or a synthesized one, and pushes the current branch. Output
// of the transfer is consumed line-by-line: progress lines feed the
// progress callback, anything classified as an error aborts.
func (c *Controller) SyncUp(ctx context.Context, message string) bool {
	c.begin(StateStaging)

	if err := c.sentinels.KeepEmptyDirs(); err != nil {
		slog.Warn("placeholder sweep failed", "error", err)
	}

	res, err := c.git.Run(ctx, "add", "--all")
	if err != nil || !res.Ok() {
		return c.fail(ErrUnreadableFiles)
	}
	if err := c.sentinels.SetUnsynced(); err != nil {
		slog.Warn("unsynced marker", "error", err)
	}

	if message == "" {
		if st, err := c.git.Run(ctx, "status", "--porcelain"); err == nil && st.Ok() {
			message = CommitMessage(ParseStatus(st.Stdout))
		}
	}

	if message != "" {
		c.setState(StateCommitting)
		if err := c.session.EnsureIdentity(ctx, c.git); err != nil {
			slog.Error("identity setup failed", "error", err)
			return c.fail(ErrUnreadableFiles)
		}
		res, err := c.git.Run(ctx, "commit", "-m", message)
		if err != nil {
			return c.fail(ErrUnreadableFiles)
		}
		if !res.Ok() {
			// nothing to commit; the push may still have work to do
			slog.Debug("commit skipped", "stderr", strings.TrimSpace(res.Stderr))
		}
	}

	branch, err := c.git.CurrentBranch(ctx)
	if err != nil {
		slog.Error("branch query failed", "error", err)
		return c.fail(ErrNotFound)
	}

	if !c.transfer(ctx, "push", "--progress", "origin", branch) {
		return false
	}

	if err := c.sentinels.ClearUnsynced(); err != nil {
		slog.Warn("unsynced marker", "error", err)
	}
	c.sentinels.RefreshSizes()
	c.setState(StateDone)
	return true
}

// SyncDown fetches the current branch with the same streamed
// consumption discipline, then merges the fetched head.
func (c *Controller) SyncDown(ctx context.Context) bool {
	c.begin(StateTransferring)

	branch, err := c.git.CurrentBranch(ctx)
	if err != nil {
		slog.Error("branch query failed", "error", err)
		return c.fail(ErrNotFound)
	}

	if !c.transfer(ctx, "fetch", "--progress", "origin", branch) {
		return false
	}
	return c.Merge(ctx)
}

// Merge reconciles the fetched head into the working copy. A stale
// mid-merge state from a previous crash is aborted and reported as
// failure; the caller retries with a fresh pull. Case-sensitivity is
// relaxed for the duration to avoid spurious case-only conflicts.
func (c *Controller) Merge(ctx context.Context) bool {
	if c.git.InMerge() {
		slog.Warn("stale merge state, aborting")
		if err := c.git.AbortMerge(ctx); err != nil {
			slog.Error("stale merge abort failed", "error", err)
		}
		c.setState(StateFailed)
		return false
	}

	c.setState(StateMerging)
	if err := c.git.SetIgnoreCase(ctx, true); err != nil {
		slog.Warn("ignorecase relax failed", "error", err)
	}

	res, err := c.git.Run(ctx, "merge", "FETCH_HEAD")
	if err != nil {
		c.restoreCase(ctx)
		return c.fail(ErrUnreadableFiles)
	}

	if res.Ok() {
		c.restoreCase(ctx)
		c.sentinels.RefreshSizes()
		c.setState(StateDone)
		return true
	}

	if unreadableMerge(res.Stderr) {
		if err := c.git.AbortMerge(ctx); err != nil {
			slog.Error("merge abort failed", "error", err)
		}
		c.restoreCase(ctx)
		return c.fail(ErrUnreadableFiles)
	}

	// any other non-zero exit is a content conflict
	c.setState(StateConflictResolving)
	ok := c.resolveLoop(ctx)
	c.restoreCase(ctx)
	if !ok {
		c.gaveUp = true
		c.setState(StateFailed)
		return false
	}

	c.sentinels.RefreshSizes()
	c.setState(StateDone)
	return true
}

// resolveLoop runs resolution passes until the working copy is out of
// merge-state with no pending local changes, tolerating transient I/O
// failures, bounded by maxResolveAttempts.
func (c *Controller) resolveLoop(ctx context.Context) bool {
	for attempt := 1; attempt <= maxResolveAttempts; attempt++ {
		if !c.git.InMerge() && !c.hasPending(ctx) {
			return true
		}

		conflictSeen, err := c.resolver.Resolve(ctx)
		if err != nil {
			slog.Warn("resolution pass failed", "attempt", attempt, "error", err)
		}
		if conflictSeen && c.onConflict != nil {
			c.onConflict()
		}
	}

	if !c.git.InMerge() && !c.hasPending(ctx) {
		return true
	}
	slog.Error("conflict resolution gave up", "attempts", maxResolveAttempts)
	return false
}

func (c *Controller) hasPending(ctx context.Context) bool {
	res, err := c.git.Run(ctx, "status", "--porcelain")
	if err != nil || !res.Ok() {
		// cannot tell; assume dirty so the loop keeps trying
		return true
	}
	return strings.TrimSpace(res.Stdout) != ""
}

// transfer starts a streamed git command and routes every output line:
// first to the progress parser, otherwise to the error classifier. A
// positive classification aborts the transfer immediately.
func (c *Controller) transfer(ctx context.Context, args ...string) bool {
	c.setState(StateTransferring)

	stream, err := c.git.Start(ctx, args...)
	if err != nil {
		slog.Error("transfer spawn failed", "error", err)
		return c.fail(ErrHostUnreachable)
	}

	progress := NewProgressParser(c.onProgress)
	lines := make(chan string, 64)

	var g errgroup.Group
	g.Go(func() error { return scanLines(stream.Out(), lines) })
	g.Go(func() error { return scanLines(stream.Err(), lines) })
	go func() {
		_ = g.Wait()
		close(lines)
	}()

	kind := ErrNone
	for line := range lines {
		if kind != ErrNone {
			continue // draining after abort
		}
		if progress.Feed(line) {
			continue
		}
		if k := Classify(line); k != ErrNone {
			slog.Error("transfer error", "kind", k, "line", line)
			kind = k
			if err := stream.Kill(); err != nil {
				slog.Debug("transfer kill failed", "error", err)
			}
		}
	}

	exit := stream.Wait()
	if kind != ErrNone {
		return c.fail(kind)
	}
	if exit != 0 {
		return c.fail(ErrHostUnreachable)
	}
	return true
}

func (c *Controller) begin(s State) {
	c.lastError = ErrNone
	c.gaveUp = false
	c.setState(s)
}

func (c *Controller) setState(s State) {
	c.state = s
	slog.Debug("sync state", "state", s)
}

func (c *Controller) fail(kind ErrorKind) bool {
	c.lastError = kind
	c.setState(StateFailed)
	return false
}

func (c *Controller) restoreCase(ctx context.Context) {
	if err := c.git.SetIgnoreCase(ctx, false); err != nil {
		slog.Warn("ignorecase restore failed", "error", err)
	}
}

// unreadableMerge spots the "cannot stat / permission denied" failure
// class that means local files are unreadable rather than conflicted.
func unreadableMerge(stderr string) bool {
	return strings.Contains(stderr, "cannot stat") ||
		strings.Contains(stderr, "Permission denied") ||
		strings.Contains(stderr, "unable to unlink")
}

// scanLines splits a live stream on both newlines and the carriage
// returns the tool uses to repaint progress lines in place.
func scanLines(r io.Reader, out chan<- string) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanCRLines)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			out <- line
		}
	}
	return scanner.Err()
}

func scanCRLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
