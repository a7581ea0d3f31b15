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

package cfg

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/rusq/coredumpmcp/internal/registry"
)

// ToolsConfig is the configuration of the external tools.  It can be loaded
// from a TOML file:
//
//	coredumpctl = "/usr/bin/coredumpctl"
//	gdb = "/usr/bin/gdb"
//	core_pattern_file = "/proc/sys/kernel/core_pattern"
//	tmpdir = "/var/tmp"
//	list_format = "json"
type ToolsConfig struct {
	Coredumpctl     string `toml:"coredumpctl" validate:"required"`
	GDB             string `toml:"gdb" validate:"required"`
	CorePatternFile string `toml:"core_pattern_file" validate:"required"`
	TempDir         string `toml:"tmpdir" validate:"omitempty,dir"`
	ListFormat      string `toml:"list_format" validate:"oneof=auto json text"`
}

// DefTools is the default tools configuration.
var DefTools = ToolsConfig{
	Coredumpctl:     "coredumpctl",
	GDB:             "gdb",
	CorePatternFile: "/proc/sys/kernel/core_pattern",
	ListFormat:      string(registry.FormatAuto),
}

var ErrConfigInvalid = errors.New("config validation failed")

var (
	// ErrTranslations translates the validation errors to English.
	ErrTranslations ut.Translator
	toolsValidator  *validator.Validate
)

func init() {
	english := en.New()
	uni := ut.New(english, english)
	ErrTranslations, _ = uni.GetTranslator("en")
	toolsValidator = validator.New(validator.WithRequiredStructEnabled())
	if err := en_translations.RegisterDefaultTranslations(toolsValidator, ErrTranslations); err != nil {
		panic(err)
	}
}

// Validate validates the configuration.
func (c ToolsConfig) Validate() error {
	if err := toolsValidator.Struct(c); err != nil {
		var vErr validator.ValidationErrors
		if errors.As(err, &vErr) {
			msgs := make([]string, 0, len(vErr))
			for _, fe := range vErr {
				msgs = append(msgs, fe.Translate(ErrTranslations))
			}
			return fmt.Errorf("%w: %s", ErrConfigInvalid, strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// Load reads the TOML configuration from r on top of c and validates the
// result.  Unknown keys are rejected.
func (c *ToolsConfig) Load(r io.Reader) error {
	if err := c.Decode(r); err != nil {
		return err
	}
	return c.Validate()
}

// Decode reads the TOML configuration from r on top of c without
// validating it.  Unknown keys are rejected.
func (c *ToolsConfig) Decode(r io.Reader) error {
	md, err := toml.NewDecoder(r).Decode(c)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("%w: unknown keys: %s", ErrConfigInvalid, strings.Join(keys, ", "))
	}
	return nil
}

// RegistryOptions returns the registry options for the configuration.
func (c ToolsConfig) RegistryOptions(lg *slog.Logger) []registry.Option {
	return []registry.Option{
		registry.WithLogger(lg),
		registry.WithCoredumpctl(c.Coredumpctl),
		registry.WithGDB(c.GDB),
		registry.WithCorePatternFile(c.CorePatternFile),
		registry.WithTempDir(c.TempDir),
		registry.WithListFormat(registry.Format(c.ListFormat)),
	}
}

// NewRegistry returns the registry initialised from the global
// configuration.  Additional options override the defaults.
func NewRegistry(opts ...registry.Option) *registry.Registry {
	return registry.New(append(Tools.RegistryOptions(Log), opts...)...)
}
