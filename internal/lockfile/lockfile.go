// ABOUTME: PID-based lock files guarding read-modify-write cycles on shared files.
// ABOUTME: Detects and clears locks left behind by dead processes.

// Package lockfile provides advisory file locks keyed on the owner's
// PID. A lock is a sibling file created with O_EXCL; holders that died
// without releasing are detected by probing their PID and cleared.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
)

// ErrLocked indicates the lock is held by a live process.
var ErrLocked = errors.New("lock already held")

// Lock is a held lock. Release it when the guarded work is done.
type Lock struct {
	path string
	file *os.File
}

// Acquire takes the lock at path, creating parent directories as
// needed. A lock whose owning process is gone counts as stale and is
// cleared. Returns ErrLocked when a live process holds it.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	// Bounded retries: one per stale clear.
	for attempt := 0; attempt < 3; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d", os.Getpid())
			return &Lock{path: path, file: f}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("creating lock file: %w", err)
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			if os.IsNotExist(readErr) {
				// Holder released between our create and read.
				continue
			}
			return nil, fmt.Errorf("%w at %s", ErrLocked, path)
		}
		pidStr := strings.TrimSpace(string(data))
		pid, parseErr := strconv.Atoi(pidStr)
		if parseErr != nil {
			return nil, fmt.Errorf("%w at %s (unreadable owner)", ErrLocked, path)
		}
		if processAlive(pid) {
			return nil, fmt.Errorf("%w by PID %d: remove %s if that process is gone", ErrLocked, pid, path)
		}
		os.Remove(path)
	}
	return nil, fmt.Errorf("%w at %s", ErrLocked, path)
}

// Release closes and removes the lock file.
func (l *Lock) Release() error {
	if l.file != nil {
		l.file.Close()
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing lock file: %w", err)
	}
	return nil
}

// Path returns the lock file's location.
func (l *Lock) Path() string { return l.path }

// processAlive reports whether a process with the given PID is running.
// Signal 0 checks for existence without delivering anything. Windows
// has no signal 0; there a successful process handle open is enough.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
