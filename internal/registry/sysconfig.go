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

// In this file: system coredump configuration.

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Unlimited is the core size limit value meaning "no limit".
const Unlimited uint64 = math.MaxUint64

// systemdCollector is the name of the systemd coredump handler binary.
const systemdCollector = "systemd-coredump"

// Limiter reads and sets the core file size limit of the current process.
// Child processes inherit it.
type Limiter interface {
	// CoreLimit returns the current (soft) core size limit in bytes.
	CoreLimit() (uint64, error)
	// SetCoreLimit raises the limit as high as allowed if enabled is true,
	// or sets it to zero otherwise.
	SetCoreLimit(enabled bool) error
}

// Config is the system coredump configuration.
type Config struct {
	Enabled        bool   `json:"enabled"`
	CorePattern    string `json:"corePattern"`
	CoreSizeLimit  string `json:"coreSizeLimit"`
	SystemdHandled bool   `json:"systemdHandled"`
}

// newConfig derives the configuration from the core pattern and the core size
// limit.
func newConfig(pattern string, limit uint64) Config {
	piped := strings.HasPrefix(pattern, "|")
	systemd := piped && strings.Contains(pattern, systemdCollector)
	return Config{
		Enabled:        limit != 0 && (systemd || !piped),
		CorePattern:    pattern,
		CoreSizeLimit:  formatLimit(limit),
		SystemdHandled: systemd,
	}
}

func formatLimit(limit uint64) string {
	if limit == Unlimited {
		return "unlimited"
	}
	return strconv.FormatUint(limit, 10)
}

// Config returns the current coredump configuration.
func (r *Registry) Config(ctx context.Context) (Config, error) {
	pattern, err := os.ReadFile(r.patternFile)
	if err != nil {
		return Config{}, fmt.Errorf("%w: reading core pattern: %w", ErrInternal, err)
	}
	limit, err := r.limiter.CoreLimit()
	if err != nil {
		return Config{}, fmt.Errorf("%w: core size limit: %w", ErrInternal, err)
	}
	return newConfig(strings.TrimSpace(string(pattern)), limit), nil
}

// SetConfig enables or disables the coredump generation by changing the core
// size limit, and reports whether the resulting configuration matches the
// request.  It only affects this process and its children, the system
// configuration is not changed.
func (r *Registry) SetConfig(ctx context.Context, enabled bool) (bool, error) {
	if err := r.limiter.SetCoreLimit(enabled); err != nil {
		return false, fmt.Errorf("%w: setting core size limit: %w", ErrInternal, err)
	}
	cfg, err := r.Config(ctx)
	if err != nil {
		return false, err
	}
	r.lg.InfoContext(ctx, "coredump configuration changed", "requested", enabled, "enabled", cfg.Enabled, "limit", cfg.CoreSizeLimit)
	return cfg.Enabled == enabled, nil
}
