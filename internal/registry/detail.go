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

package registry

// In this file: operations on a single coredump.

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rusq/coredumpmcp/internal/coredump"
	"github.com/rusq/coredumpmcp/internal/osext"
)

// Detail returns the dump with the command line and hostname filled in from
// "coredumpctl info".  If the info command fails, the cached dump is returned
// as is.
func (r *Registry) Detail(ctx context.Context, id string) (coredump.Dump, error) {
	d, err := r.lookup(ctx, id)
	if err != nil {
		return coredump.Dump{}, err
	}
	inf, err := r.info(ctx, d.PID)
	if err != nil {
		r.lg.WarnContext(ctx, "unable to get coredump info", "id", id, "error", err)
		return d, nil
	}
	return r.update(d, inf.Apply), nil
}

func (r *Registry) info(ctx context.Context, pid string) (coredump.Info, error) {
	out, err := r.run.Run(ctx, r.coredumpctl, "--no-pager", "info", pid)
	if err != nil {
		return coredump.Info{}, fmt.Errorf("%w: coredump info for pid %s: %w", ErrInternal, pid, err)
	}
	return coredump.ParseInfo(out), nil
}

// Extract writes the coredump to dst and returns dst.  The directory of dst
// must exist.
func (r *Registry) Extract(ctx context.Context, id string, dst string) (string, error) {
	if dst == "" {
		return "", fmt.Errorf("%w: output path is required", ErrInvalidParams)
	}
	d, err := r.lookup(ctx, id)
	if err != nil {
		return "", err
	}
	if err := osext.DirExists(filepath.Dir(dst)); err != nil {
		return "", fmt.Errorf("%w: output directory: %w", ErrInvalidParams, err)
	}
	if err := r.dump(ctx, d.PID, dst); err != nil {
		return "", err
	}
	r.update(d, func(d *coredump.Dump) {
		d.ExtractedPath = dst
	})
	r.lg.InfoContext(ctx, "coredump extracted", "id", id, "path", dst)
	return dst, nil
}

// dump runs "coredumpctl dump" for pid.
func (r *Registry) dump(ctx context.Context, pid string, dst string) error {
	if _, err := r.run.Run(ctx, r.coredumpctl, "--no-pager", "--output="+dst, "dump", pid); err != nil {
		return fmt.Errorf("%w: extracting coredump of pid %s: %w", ErrInternal, pid, err)
	}
	return nil
}

// Remove deletes the corefile storage of the dump, and drops the dump from
// the registry.
func (r *Registry) Remove(ctx context.Context, id string) (bool, error) {
	d, err := r.lookup(ctx, id)
	if err != nil {
		return false, err
	}
	if d.Storage == "" {
		inf, err := r.info(ctx, d.PID)
		if err != nil {
			return false, err
		}
		inf.Apply(&d)
	}
	if d.Storage == "" {
		return false, fmt.Errorf("%w: coredump %q has no storage file", ErrInternal, id)
	}
	if err := osext.RemoveIfExists(d.Storage); err != nil {
		return false, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	r.evict(id)
	r.lg.InfoContext(ctx, "coredump removed", "id", id, "storage", d.Storage)
	return true, nil
}
