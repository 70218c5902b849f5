package gitsync

import (
	"context"

	"github.com/edgarborja/SparkleShare/internal/gitcmd"
)

// Git is the narrow contract this package needs from the wrapped
// version-control tool. *gitcmd.Repo satisfies it; tests substitute a
// scripted fake.
type Git interface {
	Run(ctx context.Context, args ...string) (*gitcmd.Result, error)
	Start(ctx context.Context, args ...string) (gitcmd.Stream, error)
	WorkDir() string
	GitDir() string
	CurrentBranch(ctx context.Context) (string, error)
	RemoteURL(ctx context.Context) string
	InMerge() bool
	AbortMerge(ctx context.Context) error
	SetIgnoreCase(ctx context.Context, ignore bool) error
	SetIdentity(ctx context.Context, name, email string) error
	ShowFile(ctx context.Context, path, revision, destination string) error
	Checkout(ctx context.Context, revision string) error
}
