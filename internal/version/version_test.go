package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	t.Parallel()

	s := String()
	assert.Contains(t, s, "gatehook "+Version)
	assert.Contains(t, s, "commit "+Commit)
	assert.Contains(t, s, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestIsDevBuild(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Version == "dev", IsDevBuild())
}
