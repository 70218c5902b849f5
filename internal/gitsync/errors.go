package gitsync

import "strings"

// ErrorKind is the closed taxonomy of expected sync failures.
type ErrorKind int

const (
	ErrNone ErrorKind = iota
	ErrUnreadableFiles
	ErrHostUnreachable
	ErrHostIdentityChanged
	ErrAuthenticationFailed
	ErrNotFound
	ErrIncompatibleClientServer
	ErrDiskSpaceExceeded
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNone:
		return "none"
	case ErrUnreadableFiles:
		return "unreadable files"
	case ErrHostUnreachable:
		return "host unreachable"
	case ErrHostIdentityChanged:
		return "host identity changed"
	case ErrAuthenticationFailed:
		return "authentication failed"
	case ErrNotFound:
		return "not found"
	case ErrIncompatibleClientServer:
		return "incompatible client/server"
	case ErrDiskSpaceExceeded:
		return "disk space exceeded"
	default:
		return "unknown"
	}
}

// Classify maps one diagnostic output line to an ErrorKind. Rules are
// tested in precedence order; the first match wins. State is
// line-scoped: an unmatched line is simply ErrNone.
func Classify(line string) ErrorKind {
	switch {
	case strings.Contains(line, "REMOTE HOST IDENTIFICATION HAS CHANGED"):
		return ErrHostIdentityChanged

	case strings.Contains(line, "Permission denied"),
		strings.Contains(line, "Connection closed by"),
		strings.HasPrefix(line, "The authenticity of host"):
		return ErrAuthenticationFailed

	case strings.HasSuffix(line, "does not appear to be a git repository"),
		strings.HasSuffix(line, "Not a git repository"):
		return ErrNotFound

	case strings.HasSuffix(line, "shallow update not allowed"),
		strings.Contains(line, "protocol error"):
		return ErrIncompatibleClientServer

	case strings.Contains(line, "No space left on device"),
		strings.Contains(line, "Disk quota exceeded"):
		return ErrDiskSpaceExceeded

	default:
		return ErrNone
	}
}
