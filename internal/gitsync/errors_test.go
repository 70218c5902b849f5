package gitsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want ErrorKind
	}{
		{
			"host identity warning",
			"@ WARNING: REMOTE HOST IDENTIFICATION HAS CHANGED! @",
			ErrHostIdentityChanged,
		},
		{
			"permission denied",
			"Permission denied (publickey).",
			ErrAuthenticationFailed,
		},
		{
			"connection closed",
			"Connection closed by 203.0.113.7 port 22",
			ErrAuthenticationFailed,
		},
		{
			"authenticity prompt",
			"The authenticity of host 'example.org' can't be established.",
			ErrAuthenticationFailed,
		},
		{
			"not a repository",
			"fatal: 'share' does not appear to be a git repository",
			ErrNotFound,
		},
		{
			"shallow mismatch",
			"! [remote rejected] main -> main (shallow update not allowed)",
			ErrIncompatibleClientServer,
		},
		{
			"protocol error",
			"fatal: protocol error: bad line length character",
			ErrIncompatibleClientServer,
		},
		{
			"no space",
			"error: file write error: No space left on device",
			ErrDiskSpaceExceeded,
		},
		{
			"quota",
			"error: Disk quota exceeded",
			ErrDiskSpaceExceeded,
		},
		{
			"unrelated line",
			"Enumerating objects: 5, done.",
			ErrNone,
		},
		{
			"empty line",
			"",
			ErrNone,
		},
		{
			"identity beats permission on the same line",
			"REMOTE HOST IDENTIFICATION HAS CHANGED and Permission denied",
			ErrHostIdentityChanged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.line))
		})
	}
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "none", ErrNone.String())
	assert.Equal(t, "host unreachable", ErrHostUnreachable.String())
	assert.Equal(t, "disk space exceeded", ErrDiskSpaceExceeded.String())
}
