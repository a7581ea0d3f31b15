// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package registry keeps the list of coredumps known to systemd-coredump and
// runs the operations on them: details, extraction, removal and stack traces.
// It also reads and changes the system coredump configuration.
//
// The list is refreshed from coredumpctl and kept in memory until the next
// refresh.  Nothing is persisted.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rusq/coredumpmcp/internal/coredump"
)

// Format is the coredumpctl listing format.
type Format string

const (
	// FormatAuto tries JSON first and falls back to text.
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatText Format = "text"
)

const (
	defCoredumpctl     = "coredumpctl"
	defGDB             = "gdb"
	defCorePatternFile = "/proc/sys/kernel/core_pattern"
)

// Registry is the in-memory registry of coredumps.  It is safe for concurrent
// use.
type Registry struct {
	run     Runner
	limiter Limiter
	lg      *slog.Logger

	coredumpctl string
	gdb         string
	format      Format
	tempDir     string
	patternFile string
	loc         *time.Location

	sf singleflight.Group

	mu    sync.RWMutex
	dumps map[string]coredump.Dump
	order []string // ids in listing order
}

// Option is the functional option for the Registry.
type Option func(*Registry)

// WithRunner sets the command runner.
func WithRunner(r Runner) Option {
	return func(reg *Registry) {
		if r != nil {
			reg.run = r
		}
	}
}

// WithLimiter sets the core size limiter.
func WithLimiter(l Limiter) Option {
	return func(reg *Registry) {
		if l != nil {
			reg.limiter = l
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(reg *Registry) {
		if lg != nil {
			reg.lg = lg
		}
	}
}

// WithCoredumpctl sets the path to the coredumpctl executable.
func WithCoredumpctl(path string) Option {
	return func(reg *Registry) {
		if path != "" {
			reg.coredumpctl = path
		}
	}
}

// WithGDB sets the path to the gdb executable.
func WithGDB(path string) Option {
	return func(reg *Registry) {
		if path != "" {
			reg.gdb = path
		}
	}
}

// WithListFormat sets the listing format.
func WithListFormat(f Format) Option {
	return func(reg *Registry) {
		if f != "" {
			reg.format = f
		}
	}
}

// WithTempDir sets the directory for temporary files.
func WithTempDir(dir string) Option {
	return func(reg *Registry) {
		if dir != "" {
			reg.tempDir = dir
		}
	}
}

// WithCorePatternFile sets the path of the kernel core pattern file.
func WithCorePatternFile(path string) Option {
	return func(reg *Registry) {
		if path != "" {
			reg.patternFile = path
		}
	}
}

// WithLocation sets the location used to format the timestamps of the JSON
// listing.
func WithLocation(loc *time.Location) Option {
	return func(reg *Registry) {
		if loc != nil {
			reg.loc = loc
		}
	}
}

// New creates a new Registry.  The registry is empty until the first
// [Registry.Refresh] or a lookup.
func New(opts ...Option) *Registry {
	r := &Registry{
		run:         ExecRunner{},
		limiter:     defaultLimiter(),
		lg:          slog.Default(),
		coredumpctl: defCoredumpctl,
		gdb:         defGDB,
		format:      FormatAuto,
		tempDir:     os.TempDir(),
		patternFile: defCorePatternFile,
		loc:         time.Local,
		dumps:       make(map[string]coredump.Dump),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh lists the coredumps, and replaces the registry contents with the
// result.  It returns the dumps in the order of the listing.  If onlyPresent
// is true, only dumps with the corefile present on disk are listed.
func (r *Registry) Refresh(ctx context.Context, onlyPresent bool) ([]coredump.Dump, error) {
	key := "all"
	if onlyPresent {
		key = coredump.StatusPresent
	}
	// the refresh is shared by all callers, so it must outlive the one that
	// started it.
	ch := r.sf.DoChan(key, func() (any, error) {
		return r.refresh(context.WithoutCancel(ctx), onlyPresent)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: listing coredumps: %w", ErrInternal, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]coredump.Dump)), nil
	}
}

func (r *Registry) refresh(ctx context.Context, onlyPresent bool) ([]coredump.Dump, error) {
	listed, err := r.list(ctx, onlyPresent)
	if err != nil {
		return nil, err
	}
	dumps := make(map[string]coredump.Dump, len(listed))
	order := make([]string, 0, len(listed))
	for _, d := range listed {
		if _, seen := dumps[d.ID]; !seen {
			order = append(order, d.ID)
		}
		dumps[d.ID] = d
	}
	r.mu.Lock()
	r.dumps = dumps
	r.order = order
	r.mu.Unlock()

	r.lg.DebugContext(ctx, "coredump list refreshed", "count", len(order), "only_present", onlyPresent)
	return r.Dumps(), nil
}

// Dumps returns the cached dumps in the listing order.
func (r *Registry) Dumps() []coredump.Dump {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]coredump.Dump, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.dumps[id])
	}
	return out
}

// list runs coredumpctl and parses its output according to the configured
// format.
func (r *Registry) list(ctx context.Context, onlyPresent bool) ([]coredump.Dump, error) {
	p := coredump.Parser{OnlyPresent: onlyPresent, Location: r.loc}
	switch r.format {
	case FormatJSON:
		return r.listJSON(ctx, p)
	case FormatText:
		return r.listText(ctx, p)
	}
	dumps, err := r.listJSON(ctx, p)
	if err == nil {
		return dumps, nil
	}
	r.lg.DebugContext(ctx, "json listing failed, falling back to text", "error", err)
	return r.listText(ctx, p)
}

func (r *Registry) listJSON(ctx context.Context, p coredump.Parser) ([]coredump.Dump, error) {
	out, err := r.run.Run(ctx, r.coredumpctl, "--no-pager", "list", "--json=pretty")
	if err != nil {
		if noCoredumps(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: listing coredumps: %w", ErrInternal, err)
	}
	dumps, err := p.ParseJSON(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return dumps, nil
}

func (r *Registry) listText(ctx context.Context, p coredump.Parser) ([]coredump.Dump, error) {
	// the header is kept, it tells the parser whether there's a SIZE column
	out, err := r.run.Run(ctx, r.coredumpctl, "--no-pager", "list")
	if err != nil {
		if noCoredumps(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: listing coredumps: %w", ErrInternal, err)
	}
	return p.ParseText(out), nil
}

// noCoredumps reports whether the coredumpctl error means an empty list.
func noCoredumps(err error) bool {
	var cerr *CommandError
	if errors.As(err, &cerr) {
		return strings.Contains(cerr.Stderr, "No coredumps found")
	}
	return false
}

// get returns the cached dump.
func (r *Registry) get(id string) (coredump.Dump, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.dumps[id]
	return d, ok
}

// update applies fn to the cached dump and returns the updated copy.  If the
// dump has been dropped by a concurrent refresh, fn is applied to d only.
func (r *Registry) update(d coredump.Dump, fn func(*coredump.Dump)) coredump.Dump {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.dumps[d.ID]; ok {
		d = cached
		fn(&d)
		r.dumps[d.ID] = d
		return d
	}
	fn(&d)
	return d
}

// evict removes the dump from the registry.
func (r *Registry) evict(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.dumps, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// lookup returns the dump with the given id.  If the id is not in the
// registry, it calls recoverMissing exactly once and retries.
func (r *Registry) lookup(ctx context.Context, id string) (coredump.Dump, error) {
	if id == "" {
		return coredump.Dump{}, fmt.Errorf("%w: id is required", ErrInvalidParams)
	}
	if d, ok := r.get(id); ok {
		return d, nil
	}
	if err := r.recoverMissing(ctx, id); err != nil {
		return coredump.Dump{}, err
	}
	if d, ok := r.get(id); ok {
		return d, nil
	}
	return coredump.Dump{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// recoverMissing refreshes the registry to pick up the dumps that appeared
// after the last refresh.  It is not a retry loop: it runs once per lookup.
func (r *Registry) recoverMissing(ctx context.Context, id string) error {
	r.lg.DebugContext(ctx, "coredump not in the registry, refreshing", "id", id)
	if _, err := r.Refresh(ctx, false); err != nil {
		return fmt.Errorf("refresh for %q: %w", id, err)
	}
	return nil
}
