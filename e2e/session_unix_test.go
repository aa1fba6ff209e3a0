//go:build e2e && unix

package main

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

// maxOutput bounds the captured terminal output; older bytes are dropped
const maxOutput = 1 << 20

const (
	keyEnter = "\r"
	keyCtrlC = "\x03"
	keyEsc   = "\x1b"
	keyUp    = "\x1b[A"
	keyDown  = "\x1b[B"
)

var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` + // CSI
		`(?:\x1b\][^\x07]*\x07)|` + // OSC
		`(?:\x1b[\(\)][A-Za-z])|` + // charset
		`(?:\x1b=|\x1b>)|` + // keypad mode
		`\r`,
)

var binPath = "searchable_e2e"

// session runs the binary in a pty over a temporary workspace
type session struct {
	t   *testing.T
	dir string

	cmd  *exec.Cmd
	tty  *os.File
	done chan struct{}
	err  error

	mu  sync.Mutex
	out []byte
}

// newSession creates a workspace. The process is killed and, if the test
// failed, the tail of its output logged when the test ends.
func newSession(t *testing.T) *session {
	t.Helper()
	s := &session{t: t, dir: t.TempDir()}
	t.Cleanup(s.close)
	t.Cleanup(func() {
		if t.Failed() {
			t.Logf("--- output tail ---\n%s", s.tail(4096))
		}
	})
	return s
}

// files creates files in the workspace, making parent directories
func (s *session) files(names ...string) {
	s.t.Helper()
	for _, name := range names {
		path := filepath.Join(s.dir, filepath.FromSlash(name))
		require.NoError(s.t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(s.t, os.WriteFile(path, []byte(name+"\n"), 0644))
	}
}

// start launches the binary over the workspace and waits for the first frame
func (s *session) start(args ...string) {
	s.t.Helper()

	args = append(args, "--log-file", filepath.Join(s.t.TempDir(), "searchable.log"), s.dir)
	s.cmd = exec.Command(binPath, args...)
	s.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C",
		"LANG=C",
		"HOME="+s.dir,
		"SEARCHABLE_E2E_TEST=1",
	)

	tty, err := pty.StartWithSize(s.cmd, &pty.Winsize{Rows: 40, Cols: 120})
	require.NoError(s.t, err, "failed to start %s", binPath)
	s.tty = tty
	s.done = make(chan struct{})

	go s.capture()
	go func() {
		s.err = s.cmd.Wait()
		close(s.done)
	}()

	s.expect("__READY__", 5*time.Second, "no ready marker")
}

func (s *session) capture() {
	buf := make([]byte, 8192)
	for {
		n, err := s.tty.Read(buf)
		if n > 0 {
			s.mu.Lock()
			s.out = append(s.out, buf[:n]...)
			if over := len(s.out) - maxOutput; over > 0 {
				s.out = s.out[over:]
			}
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// screen returns everything printed so far with escape sequences removed
func (s *session) screen() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ansiRe.ReplaceAllString(string(s.out), "")
}

func (s *session) tail(n int) string {
	out := s.screen()
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

// waitFor polls the screen until it contains text
func (s *session) waitFor(text string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if strings.Contains(s.screen(), text) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(25 * time.Millisecond)
	}
}

// expect fails the test unless text shows up within timeout
func (s *session) expect(text string, timeout time.Duration, msg string) {
	s.t.Helper()
	if !s.waitFor(text, timeout) {
		s.t.Fatalf("%s: %q not shown", msg, text)
	}
}

func (s *session) send(keys string) {
	s.t.Helper()
	_, err := s.tty.Write([]byte(keys))
	require.NoError(s.t, err)
}

// typeText sends text one rune at a time
func (s *session) typeText(text string) {
	s.t.Helper()
	for _, r := range text {
		s.send(string(r))
		time.Sleep(30 * time.Millisecond)
	}
}

// wait waits for the process to exit, sending ctrl+c once timeout passes
func (s *session) wait(timeout time.Duration) error {
	s.t.Helper()
	select {
	case <-s.done:
		return s.err
	case <-time.After(timeout):
		s.send(keyCtrlC)
	}
	select {
	case <-s.done:
		return s.err
	case <-time.After(2 * time.Second):
		return errors.New("process did not exit")
	}
}

func (s *session) close() {
	if s.cmd == nil {
		return
	}
	_ = s.tty.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
	}
	s.cmd = nil
}
