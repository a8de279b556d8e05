// Package wcroot resolves filesystem paths to the Subversion working-copy
// root that commands for them must run in.
//
// Resolution first probes the directory holding the path. When that fails
// and an override root is configured, the path is relativized against the
// override and the override itself is probed. The override root is the only mutable state and is read
// as a snapshot.
package wcroot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mrz1836/svnbridge/internal/constants"
	"github.com/mrz1836/svnbridge/internal/ctxutil"
	bridgeerrors "github.com/mrz1836/svnbridge/internal/errors"
)

// Prober checks whether target, relative to dir, is a versioned node.
// A nil error means svn recognized it. The resolver probes directories
// with target ".".
type Prober interface {
	Probe(ctx context.Context, dir, target string) error
}

// RootStore persists the override root across restarts.
type RootStore interface {
	LoadOverrideRoot(ctx context.Context) (string, error)
	SaveOverrideRoot(ctx context.Context, root string) error
	ClearOverrideRoot(ctx context.Context) error
}

// TrackedPath is a path together with the root to run commands in.
type TrackedPath struct {
	// Path is the absolute, cleaned input path.
	Path string `json:"path"`
	// Root is the directory commands must run in.
	Root string `json:"root"`
	// RelativePath is the slash-separated target relative to Root. It never
	// starts with "..".
	RelativePath string `json:"relative_path"`
	// ViaOverride is true when Root is the override root.
	ViaOverride bool `json:"via_override"`
}

// probeResult is the explicit outcome of one probe.
type probeResult struct {
	tracked TrackedPath
	ok      bool
	err     error
}

// Resolver maps paths to working-copy roots.
type Resolver struct {
	prober Prober
	store  RootStore
	logger zerolog.Logger

	mu       sync.RWMutex
	override string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithOverrideRoot seeds the override root without consulting the store.
func WithOverrideRoot(root string) Option {
	return func(r *Resolver) {
		r.override = filepath.Clean(root)
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver. When store is non-nil and no override was
// seeded through options, the persisted override root is loaded. A persisted
// root that no longer holds working-copy metadata is kept but logged.
func NewResolver(ctx context.Context, prober Prober, store RootStore, opts ...Option) *Resolver {
	r := &Resolver{
		prober: prober,
		store:  store,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With().Str("component", "wcroot").Logger()

	if r.override == "" && store != nil {
		root, err := store.LoadOverrideRoot(ctx)
		switch {
		case err != nil:
			r.logger.Warn().Err(err).Msg("failed to load override root")
		case root != "":
			r.override = filepath.Clean(root)
			if !HasMetadata(r.override) {
				r.logger.Warn().Str("root", r.override).Msg("override root has no working-copy metadata")
			}
		}
	}
	return r
}

// OverrideRoot returns the current override root, or "" when unset.
func (r *Resolver) OverrideRoot() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.override
}

// SetOverrideRoot validates dir, persists it and makes it the active
// override root.
func (r *Resolver) SetOverrideRoot(ctx context.Context, dir string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("override root cannot be empty: %w", bridgeerrors.ErrEmptyValue)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", dir, err)
	}
	if !HasMetadata(abs) {
		return fmt.Errorf("%s has no %s directory: %w", abs, constants.MetadataDirName, bridgeerrors.ErrMissingMetadata)
	}

	if r.store != nil {
		if err := r.store.SaveOverrideRoot(ctx, abs); err != nil {
			return fmt.Errorf("failed to persist override root: %w", err)
		}
	}

	r.mu.Lock()
	r.override = abs
	r.mu.Unlock()

	r.logger.Info().Str("root", abs).Msg("override root set")
	return nil
}

// ClearOverrideRoot removes the override root and its persisted value.
func (r *Resolver) ClearOverrideRoot(ctx context.Context) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if r.store != nil {
		if err := r.store.ClearOverrideRoot(ctx); err != nil {
			return fmt.Errorf("failed to clear persisted override root: %w", err)
		}
	}

	r.mu.Lock()
	r.override = ""
	r.mu.Unlock()

	r.logger.Info().Msg("override root cleared")
	return nil
}

// Resolve maps path to a TrackedPath, or returns an error wrapping
// ErrNotInWorkingCopy.
func (r *Resolver) Resolve(ctx context.Context, path string) (TrackedPath, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return TrackedPath{}, err
	}
	if strings.TrimSpace(path) == "" {
		return TrackedPath{}, fmt.Errorf("path cannot be empty: %w", bridgeerrors.ErrEmptyValue)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return TrackedPath{}, fmt.Errorf("failed to resolve %q: %w", path, err)
	}

	direct := r.probeDirect(ctx, abs)
	if direct.ok {
		return direct.tracked, nil
	}

	override := r.OverrideRoot()
	if override == "" {
		return TrackedPath{}, fmt.Errorf("%s: %w: %w", abs, bridgeerrors.ErrNotInWorkingCopy, direct.err)
	}

	if err := ctxutil.Canceled(ctx); err != nil {
		return TrackedPath{}, err
	}

	viaOverride := r.probeOverride(ctx, override, abs)
	if viaOverride.ok {
		r.logger.Debug().
			Str("path", abs).
			Str("root", override).
			Str("relative", viaOverride.tracked.RelativePath).
			Msg("resolved through override root")
		return viaOverride.tracked, nil
	}

	return TrackedPath{}, fmt.Errorf("%s: %w: %w", abs, bridgeerrors.ErrNotInWorkingCopy, viaOverride.err)
}

// probeDirect probes the directory holding the path with "." so that
// unversioned and missing files still resolve to their working copy. A
// directory probes itself first and then its parent, which lets a new,
// unversioned directory resolve too.
func (r *Resolver) probeDirect(ctx context.Context, abs string) probeResult {
	type candidate struct{ dir, rel string }
	candidates := []candidate{{filepath.Dir(abs), filepath.Base(abs)}}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		candidates = append([]candidate{{abs, "."}}, candidates...)
	}

	var res probeResult
	for _, c := range candidates {
		if err := r.prober.Probe(ctx, c.dir, "."); err != nil {
			res = probeResult{err: err}
			continue
		}
		return probeResult{
			ok: true,
			tracked: TrackedPath{
				Path:         abs,
				Root:         c.dir,
				RelativePath: c.rel,
			},
		}
	}
	return res
}

// probeOverride checks that abs lies under root and that root itself is a
// working copy.
func (r *Resolver) probeOverride(ctx context.Context, root, abs string) probeResult {
	rel, err := Relativize(root, abs)
	if err != nil {
		return probeResult{err: err}
	}
	if err := r.prober.Probe(ctx, root, "."); err != nil {
		return probeResult{err: err}
	}
	return probeResult{
		ok: true,
		tracked: TrackedPath{
			Path:         abs,
			Root:         root,
			RelativePath: rel,
			ViaOverride:  true,
		},
	}
}

// Relativize returns path relative to root in slash form. It fails with
// ErrPathOutsideRoot when the result would climb out of root.
func Relativize(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("%s is not under %s: %w: %w", path, root, bridgeerrors.ErrPathOutsideRoot, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is not under %s: %w", path, root, bridgeerrors.ErrPathOutsideRoot)
	}
	return filepath.ToSlash(rel), nil
}

// HasMetadata reports whether dir contains the working-copy metadata marker.
func HasMetadata(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, constants.MetadataDirName))
	return err == nil && info.IsDir()
}
