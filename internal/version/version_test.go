package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionStrings(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, Revision)

	short := Short()
	assert.Contains(t, short, Version)
	assert.Contains(t, short, Revision)

	detailed := Detailed()
	assert.Contains(t, detailed, Version)
	assert.Contains(t, detailed, "/") // GOOS/GOARCH part
}

func TestApplyBuildInfo_PopulatesDefaults(t *testing.T) {
	origVersion, origRevision := Version, Revision
	t.Cleanup(func() {
		Version, Revision = origVersion, origRevision
	})

	Version = "3.0.0-dev"
	Revision = "HEAD"

	applyBuildInfo("v9.9.9", map[string]string{
		"vcs.revision": "abcdef1234567890",
		"vcs.modified": "true",
	})

	assert.Equal(t, "9.9.9", Version)
	assert.Equal(t, "abcdef1234567890-dirty", Revision)
}

func TestApplyBuildInfo_DoesNotOverrideLdflags(t *testing.T) {
	origVersion, origRevision := Version, Revision
	t.Cleanup(func() {
		Version, Revision = origVersion, origRevision
	})

	Version = "1.2.3"
	Revision = "deadbeef"

	applyBuildInfo("v9.9.9", map[string]string{"vcs.revision": "abcdef"})

	assert.Equal(t, "1.2.3", Version)
	assert.Equal(t, "deadbeef", Revision)
}
