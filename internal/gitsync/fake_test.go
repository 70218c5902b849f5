package gitsync

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/edgarborja/SparkleShare/internal/gitcmd"
)

// fakeGit scripts the external tool for tests. Run calls are recorded
// and answered by onRun when set, otherwise with a clean exit.
type fakeGit struct {
	workDir string
	gitDir  string
	branch  string
	remote  string

	calls   [][]string
	onRun   func(args []string) *gitcmd.Result
	streams []*fakeStream

	inMerge    func() bool
	ignoreCase []bool
	identities []User
	checkouts  []string
}

func newFakeGit(workDir string) *fakeGit {
	return &fakeGit{
		workDir: workDir,
		gitDir:  filepath.Join(workDir, ".git"),
		branch:  "main",
		inMerge: func() bool { return false },
	}
}

func (g *fakeGit) Run(_ context.Context, args ...string) (*gitcmd.Result, error) {
	g.calls = append(g.calls, args)
	if g.onRun != nil {
		if res := g.onRun(args); res != nil {
			return res, nil
		}
	}
	return &gitcmd.Result{ExitCode: 0}, nil
}

func (g *fakeGit) Start(_ context.Context, args ...string) (gitcmd.Stream, error) {
	g.calls = append(g.calls, args)
	if len(g.streams) == 0 {
		return &fakeStream{}, nil
	}
	s := g.streams[0]
	g.streams = g.streams[1:]
	return s, nil
}

func (g *fakeGit) WorkDir() string { return g.workDir }
func (g *fakeGit) GitDir() string  { return g.gitDir }

func (g *fakeGit) CurrentBranch(context.Context) (string, error) { return g.branch, nil }
func (g *fakeGit) RemoteURL(context.Context) string              { return g.remote }

func (g *fakeGit) InMerge() bool { return g.inMerge() }

func (g *fakeGit) AbortMerge(context.Context) error {
	g.calls = append(g.calls, []string{"merge", "--abort"})
	return nil
}

func (g *fakeGit) SetIgnoreCase(_ context.Context, ignore bool) error {
	g.ignoreCase = append(g.ignoreCase, ignore)
	return nil
}

func (g *fakeGit) SetIdentity(_ context.Context, name, email string) error {
	g.identities = append(g.identities, User{Name: name, Email: email})
	return nil
}

func (g *fakeGit) ShowFile(_ context.Context, path, revision, destination string) error {
	return os.WriteFile(destination, []byte(revision+":"+path), 0o644)
}

func (g *fakeGit) Checkout(_ context.Context, revision string) error {
	g.checkouts = append(g.checkouts, revision)
	return nil
}

// calledWith reports whether any recorded call starts with prefix.
func (g *fakeGit) calledWith(prefix ...string) bool {
	for _, call := range g.calls {
		if len(call) < len(prefix) {
			continue
		}
		match := true
		for i, p := range prefix {
			if call[i] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

type fakeStream struct {
	out    string
	errOut string
	exit   int
	killed bool
}

func (f *fakeStream) Out() io.Reader { return strings.NewReader(f.out) }
func (f *fakeStream) Err() io.Reader { return strings.NewReader(f.errOut) }
func (f *fakeStream) Wait() int      { return f.exit }
func (f *fakeStream) Kill() error {
	f.killed = true
	return nil
}
