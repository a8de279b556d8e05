// Package state persists process-wide svnbridge state across restarts.
// Today that is the override working-copy root. Writes are atomic
// (write-then-rename) and serialized with an exclusive file lock.
package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/svnbridge/internal/clock"
	"github.com/mrz1836/svnbridge/internal/constants"
	"github.com/mrz1836/svnbridge/internal/ctxutil"
	bridgeerrors "github.com/mrz1836/svnbridge/internal/errors"
)

// lockRetryInterval is the pause between lock attempts.
const lockRetryInterval = 50 * time.Millisecond

// State is the persisted document.
type State struct {
	OverrideRoot string    `yaml:"override_root,omitempty"`
	UpdatedAt    time.Time `yaml:"updated_at,omitempty"`
}

// FileStore keeps State in a YAML file. It satisfies wcroot.RootStore.
type FileStore struct {
	path        string
	clock       clock.Clock
	lockTimeout time.Duration
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithClock sets the clock used for UpdatedAt.
func WithClock(c clock.Clock) Option {
	return func(s *FileStore) {
		s.clock = c
	}
}

// WithLockTimeout sets how long to wait for the file lock.
func WithLockTimeout(d time.Duration) Option {
	return func(s *FileStore) {
		s.lockTimeout = d
	}
}

// NewFileStore creates a FileStore for path.
func NewFileStore(path string, opts ...Option) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("state path cannot be empty: %w", bridgeerrors.ErrEmptyValue)
	}
	s := &FileStore{
		path:        path,
		clock:       clock.RealClock{},
		lockTimeout: constants.StateLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the state file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the state. A missing file yields an empty State.
func (s *FileStore) Load(ctx context.Context) (*State, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &State{}, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w: %w", s.path, bridgeerrors.ErrStateCorrupted, err)
	}
	return &st, nil
}

// LoadOverrideRoot returns the persisted override root, or "" when unset.
func (s *FileStore) LoadOverrideRoot(ctx context.Context) (string, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	return st.OverrideRoot, nil
}

// SaveOverrideRoot persists root.
func (s *FileStore) SaveOverrideRoot(ctx context.Context, root string) error {
	return s.update(ctx, func(st *State) {
		st.OverrideRoot = root
	})
}

// ClearOverrideRoot removes the persisted override root.
func (s *FileStore) ClearOverrideRoot(ctx context.Context) error {
	return s.update(ctx, func(st *State) {
		st.OverrideRoot = ""
	})
}

// update applies mutate under the lock and writes the result atomically.
func (s *FileStore) update(ctx context.Context, mutate func(*State)) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), constants.DirPerm); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	lock, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = releaseLock(lock) }()

	st, err := s.Load(ctx)
	if err != nil {
		if !errors.Is(err, bridgeerrors.ErrStateCorrupted) {
			return err
		}
		// A corrupted file is replaced rather than blocking the user
		st = &State{}
	}

	mutate(st)
	st.UpdatedAt = s.clock.Now().UTC()

	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	return atomicWrite(s.path, data, constants.FilePerm)
}

func (s *FileStore) lockPath() string {
	return s.path + ".lock"
}

// acquireLock takes the exclusive lock, retrying until the lock timeout.
// It respects context cancellation between attempts.
func (s *FileStore) acquireLock(ctx context.Context) (*os.File, error) {
	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, constants.FilePerm) //#nosec G302,G304 -- lock file needs write access, path is internal
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := s.clock.Now().Add(s.lockTimeout)
	for {
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		default:
		}

		if err := lockExclusive(f.Fd()); err == nil {
			return f, nil
		}

		if s.clock.Now().After(deadline) {
			_ = f.Close()
			return nil, fmt.Errorf("failed to acquire state lock: %w", bridgeerrors.ErrLockTimeout)
		}

		time.Sleep(lockRetryInterval)
	}
}

func releaseLock(f *os.File) error {
	if f == nil {
		return nil
	}
	if err := unlock(f.Fd()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return f.Close()
}

// atomicWrite writes data to a file atomically using write-then-rename.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	// Data must reach disk before the rename makes it visible
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
