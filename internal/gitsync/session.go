package gitsync

import "context"

// Session is the per-repository state fixed at construction: who is
// committing and whether the repository content is encrypted at rest.
// It replaces ad-hoc mutable instance flags; operations receive it
// explicitly.
type Session struct {
	User      User
	Encrypted bool

	identityConfigured bool
}

func NewSession(user User, encrypted bool) *Session {
	return &Session{User: user, Encrypted: encrypted}
}

// EnsureIdentity configures the commit identity once per session.
// Subsequent calls are no-ops.
func (s *Session) EnsureIdentity(ctx context.Context, git Git) error {
	if s.identityConfigured {
		return nil
	}
	if err := git.SetIdentity(ctx, s.User.Name, s.User.Email); err != nil {
		return err
	}
	s.identityConfigured = true
	return nil
}
