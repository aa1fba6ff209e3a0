//go:build e2e && unix

package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApplicationExit(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	s.files("exit-test.txt")
	s.start()

	s.send(keyEsc)
	require.NoError(t, s.wait(1500*time.Millisecond), "esc should exit cleanly")
}

func TestChoosePrintsPath(t *testing.T) {
	t.Parallel()
	s := newSession(t)
	s.files("docs/guide.md", "docs/index.md", "main.go")
	s.start("--no-debounce", "-q", "docs/")

	s.expect("2/3", 5*time.Second, "initial query")
	s.send(keyDown)
	s.send(keyUp)
	s.send(keyDown)
	time.Sleep(100 * time.Millisecond)
	s.send(keyEnter)
	require.NoError(t, s.wait(2*time.Second))

	s.expect(filepath.Join(s.dir, "docs", "index.md"), 2*time.Second, "chosen path")
}
