// Package instance keeps one mentor process at a time on a .mentor/
// directory. Embedded vector stores are not safe for concurrent writers, so
// commands that open the memory take an exclusive lock first and record
// who holds it.
package instance

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/papercomputeco/mentor/pkg/dotdir"
)

const (
	stateFileName = "instance.json"
	lockFileName  = "instance.lock"
	stateVersion  = 1
)

// ErrLocked is returned by TryLock when another process holds the lock.
var ErrLocked = errors.New("memory is in use by another mentor process")

// State describes the process holding the lock.
type State struct {
	Version   int       `json:"version"`
	PID       int       `json:"pid"`
	Command   string    `json:"command"`
	WatchDir  string    `json:"watch_dir,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

type Manager struct {
	Dir       string
	StatePath string
	LockPath  string
}

type Lock struct {
	file *os.File
	m    *Manager
}

func NewManager(configDir string) (*Manager, error) {
	dir, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return nil, err
	}

	return &Manager{
		Dir:       dir,
		StatePath: filepath.Join(dir, stateFileName),
		LockPath:  filepath.Join(dir, lockFileName),
	}, nil
}

// TryLock takes the lock without waiting and records state. When the lock
// is held elsewhere the returned error wraps ErrLocked and names the holder
// if it is known.
func (m *Manager) TryLock(state *State) (*Lock, error) {
	file, err := os.OpenFile(m.LockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		file.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			if holder, _ := m.LoadState(); holder != nil {
				return nil, fmt.Errorf("%w (%s, pid %d)", ErrLocked, holder.Command, holder.PID)
			}
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("locking instance file: %w", err)
	}

	lock := &Lock{file: file, m: m}
	if state != nil {
		if err := m.SaveState(state); err != nil {
			_ = lock.Release()
			return nil, err
		}
	}

	return lock, nil
}

// Release clears the recorded state and unlocks.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}

	clearErr := l.m.ClearState()

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		_ = l.file.Close()
		return fmt.Errorf("unlocking instance file: %w", err)
	}
	if err := l.file.Close(); err != nil {
		return err
	}
	l.file = nil

	return clearErr
}

func (m *Manager) LoadState() (*State, error) {
	data, err := os.ReadFile(m.StatePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading instance state: %w", err)
	}

	state := &State{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing instance state: %w", err)
	}

	return state, nil
}

func (m *Manager) SaveState(state *State) error {
	if state == nil {
		return errors.New("cannot save nil state")
	}
	if state.Version == 0 {
		state.Version = stateVersion
	}
	if state.PID == 0 {
		state.PID = os.Getpid()
	}
	if state.StartedAt.IsZero() {
		state.StartedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling instance state: %w", err)
	}

	tmpFile, err := os.CreateTemp(m.Dir, "instance-state-*.json")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}

	if err := tmpFile.Chmod(0o600); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("chmod temp state file: %w", err)
	}

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("writing temp state file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp state file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), m.StatePath); err != nil {
		return fmt.Errorf("persisting state file: %w", err)
	}

	return nil
}

func (m *Manager) ClearState() error {
	if err := os.Remove(m.StatePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing instance state: %w", err)
	}
	return nil
}
