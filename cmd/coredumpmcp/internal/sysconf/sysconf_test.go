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

package sysconf

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusq/coredumpmcp/internal/registry"
)

func Test_parseSwitch(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"on", true, false},
		{"ON", true, false},
		{"enable", true, false},
		{"1", true, false},
		{"off", false, false},
		{"false", false, false},
		{"maybe", false, true},
		{"", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSwitch(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_printConfig(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, printConfig(&buf, registry.Config{
		Enabled:        true,
		CorePattern:    "|/usr/lib/systemd/systemd-coredump %P %u %g %s %t %c %h",
		CoreSizeLimit:  "unlimited",
		SystemdHandled: true,
	}))
	want := "" +
		"Enabled:          yes\n" +
		"Core pattern:     |/usr/lib/systemd/systemd-coredump %P %u %g %s %t %c %h\n" +
		"Core size limit:  unlimited\n" +
		"systemd-coredump: yes\n"
	assert.Equal(t, want, buf.String())
}

type fakeConfigurer struct {
	set    []bool
	setOK  bool
	setErr error
	cfg    registry.Config
	cfgErr error
}

func (f *fakeConfigurer) Config(context.Context) (registry.Config, error) {
	return f.cfg, f.cfgErr
}

func (f *fakeConfigurer) SetConfig(_ context.Context, enabled bool) (bool, error) {
	f.set = append(f.set, enabled)
	return f.setOK, f.setErr
}

func Test_runConfig(t *testing.T) {
	old := newConfigurer
	t.Cleanup(func() { newConfigurer = old })

	tests := []struct {
		name    string
		args    []string
		fake    *fakeConfigurer
		wantSet []bool
		wantErr bool
	}{
		{"show", nil, &fakeConfigurer{}, nil, false},
		{"enable", []string{"on"}, &fakeConfigurer{setOK: true}, []bool{true}, false},
		{"disable mismatch is not an error", []string{"off"}, &fakeConfigurer{}, []bool{false}, false},
		{"bad argument", []string{"sideways"}, &fakeConfigurer{}, nil, true},
		{"too many arguments", []string{"on", "off"}, &fakeConfigurer{}, nil, true},
		{"set error", []string{"on"}, &fakeConfigurer{setErr: errors.New("operation not permitted")}, []bool{true}, true},
		{"config error", nil, &fakeConfigurer{cfgErr: errors.New("no such file")}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newConfigurer = func() configurer { return tt.fake }
			err := runConfig(t.Context(), CmdConfig, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantSet, tt.fake.set)
		})
	}
}
