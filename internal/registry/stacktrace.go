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

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/rusq/coredumpmcp/internal/coredump"
	"github.com/rusq/coredumpmcp/internal/osext"
)

// gdbScript is the command sequence fed to gdb.
const gdbScript = `set pagination off
set width 0
set confirm off
thread apply all bt full
quit
`

// StackTrace extracts the coredump (unless it was already extracted) and
// runs gdb on it to get the backtrace of all threads.  Temporary files are
// removed before it returns.
func (r *Registry) StackTrace(ctx context.Context, id string) (*coredump.StackTrace, error) {
	d, err := r.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	tmpBase := r.tempBase(d)

	core := d.ExtractedPath
	if core == "" || !osext.FileExists(core) {
		core = tmpBase + ".core"
		defer r.removeTemp(ctx, core)
		if err := r.dump(ctx, d.PID, core); err != nil {
			return nil, err
		}
	}

	script := tmpBase + ".gdb"
	defer r.removeTemp(ctx, script)
	if err := os.WriteFile(script, []byte(gdbScript), 0o600); err != nil {
		return nil, fmt.Errorf("%w: writing gdb script: %w", ErrInternal, err)
	}

	out, err := r.run.Run(ctx, r.gdb, "-q", "-batch", "-nx", "-x", script, d.Executable, core)
	if err != nil {
		return nil, fmt.Errorf("%w: gdb: %w", ErrInternal, err)
	}
	st, err := coredump.ParseBacktrace(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	st.DumpID = d.ID
	st.Signal = d.Signal
	return &st, nil
}

// tempBase returns the unique base name for the temporary files of d.
func (r *Registry) tempBase(d coredump.Dump) string {
	return filepath.Join(r.tempDir, "coredump-"+d.PID+"-"+uuid.NewString())
}

func (r *Registry) removeTemp(ctx context.Context, name string) {
	if err := osext.RemoveIfExists(name); err != nil {
		r.lg.WarnContext(ctx, "unable to remove temporary file", "name", name, "error", err)
	}
}
