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

package coredump

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const textListing = `TIME                            PID  UID  GID SIG     COREFILE EXE                  SIZE
Sat 2023-06-17 01:50:45 JST    2465 1000  100 SIGABRT present  /usr/bin/cuteime     1.5M
Sun 2023-06-18 10:02:11 JST    3001 1000  100 SIGSEGV missing  /opt/My App/bin/app  -
Mon 2023-06-19 08:00:00 JST    4410    0    0 SIGBUS  present  /usr/sbin/daemon
garbage line
Tue 2023-06-20 12:00:00 JST    5000 1000  100 SIGSEGV unknown  /usr/bin/x           2K
`

func TestParser_ParseText(t *testing.T) {
	tests := []struct {
		name        string
		onlyPresent bool
		input       string
		want        []Dump
	}{
		{
			name:  "single line from the documentation",
			input: "Sat 2023-06-17 01:50:45 JST    2465 1000  100 SIGABRT present  /usr/bin/cuteime 1.5M",
			want: []Dump{
				{
					ID:         "Sat 2023-06-17 01:50:45 JST-2465",
					PID:        "2465",
					UID:        "1000",
					GID:        "100",
					Signal:     "SIGABRT",
					Timestamp:  "Sat 2023-06-17 01:50:45 JST",
					Corefile:   "present",
					Executable: "/usr/bin/cuteime",
				},
			},
		},
		{
			name:  "listing with header, spaces in path and garbage",
			input: textListing,
			want: []Dump{
				{ID: "Sat 2023-06-17 01:50:45 JST-2465", PID: "2465", UID: "1000", GID: "100", Signal: "SIGABRT", Timestamp: "Sat 2023-06-17 01:50:45 JST", Corefile: "present", Executable: "/usr/bin/cuteime"},
				{ID: "Sun 2023-06-18 10:02:11 JST-3001", PID: "3001", UID: "1000", GID: "100", Signal: "SIGSEGV", Timestamp: "Sun 2023-06-18 10:02:11 JST", Corefile: "missing", Executable: "/opt/My App/bin/app"},
				{ID: "Mon 2023-06-19 08:00:00 JST-4410", PID: "4410", UID: "0", GID: "0", Signal: "SIGBUS", Timestamp: "Mon 2023-06-19 08:00:00 JST", Corefile: "present", Executable: "/usr/sbin/daemon"},
			},
		},
		{
			name:        "only present",
			onlyPresent: true,
			input:       textListing,
			want: []Dump{
				{ID: "Sat 2023-06-17 01:50:45 JST-2465", PID: "2465", UID: "1000", GID: "100", Signal: "SIGABRT", Timestamp: "Sat 2023-06-17 01:50:45 JST", Corefile: "present", Executable: "/usr/bin/cuteime"},
				{ID: "Mon 2023-06-19 08:00:00 JST-4410", PID: "4410", UID: "0", GID: "0", Signal: "SIGBUS", Timestamp: "Mon 2023-06-19 08:00:00 JST", Corefile: "present", Executable: "/usr/sbin/daemon"},
			},
		},
		{
			name:  "too few tokens",
			input: "2465 1000 100 SIGABRT present /usr/bin/x",
			want:  nil,
		},
		{
			name:  "no status token",
			input: "Sat 2023-06-17 01:50:45 JST 2465 1000 100 SIGABRT gone /usr/bin/x",
			want:  nil,
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "trailing number in the path is not a size",
			input: "Sat 2023-06-17 01:50:45 JST 2465 1000 100 SIGABRT present /opt/My App 2",
			want: []Dump{
				{ID: "Sat 2023-06-17 01:50:45 JST-2465", PID: "2465", UID: "1000", GID: "100", Signal: "SIGABRT", Timestamp: "Sat 2023-06-17 01:50:45 JST", Corefile: "present", Executable: "/opt/My App 2"},
			},
		},
		{
			name: "header without SIZE keeps the last word",
			input: "TIME PID UID GID SIG COREFILE EXE\n" +
				"Sat 2023-06-17 01:50:45 JST 2465 1000 100 SIGABRT present /opt/App 2K\n",
			want: []Dump{
				{ID: "Sat 2023-06-17 01:50:45 JST-2465", PID: "2465", UID: "1000", GID: "100", Signal: "SIGABRT", Timestamp: "Sat 2023-06-17 01:50:45 JST", Corefile: "present", Executable: "/opt/App 2K"},
			},
		},
		{
			name: "header with SIZE drops the size",
			input: "TIME PID UID GID SIG COREFILE EXE SIZE\n" +
				"Sat 2023-06-17 01:50:45 JST 2465 1000 100 SIGABRT present /opt/App 2K\n",
			want: []Dump{
				{ID: "Sat 2023-06-17 01:50:45 JST-2465", PID: "2465", UID: "1000", GID: "100", Signal: "SIGABRT", Timestamp: "Sat 2023-06-17 01:50:45 JST", Corefile: "present", Executable: "/opt/App"},
			},
		},
		{
			name:  "ISO timestamp with a single token",
			input: "2023-06-17T01:50:45+0900 2465 1000 100 SIGABRT present /usr/bin/cuteime",
			want: []Dump{
				{ID: "2023-06-17T01:50:45+0900-2465", PID: "2465", UID: "1000", GID: "100", Signal: "SIGABRT", Timestamp: "2023-06-17T01:50:45+0900", Corefile: "present", Executable: "/usr/bin/cuteime"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parser{OnlyPresent: tt.onlyPresent}
			got := p.ParseText([]byte(tt.input))
			assert.Equal(t, tt.want, stripTime(got))
		})
	}
}

func TestParser_ParseText_roundTrip(t *testing.T) {
	rows := []string{
		"Sat 2023-06-17 01:50:45 JST    2465 1000  100 SIGABRT present  /usr/bin/cuteime 1.5M",
		"Thu 2024-01-04 23:59:59 UTC 1 0 0 SIGSEGV missing /usr/lib/systemd/systemd",
		"Fri 2024-02-02 00:00:01 CET 77 1000 1000 SIGILL present /home/user/my program 12K",
	}
	for _, row := range rows {
		got := Parser{}.ParseText([]byte(row))
		require.Len(t, got, 1, row)
		d := got[0]
		rebuilt := strings.Join([]string{d.Timestamp, d.PID, d.UID, d.GID, d.Signal, d.Corefile, d.Executable}, " ")
		want := strings.Fields(row)
		if reSize.MatchString(want[len(want)-1]) {
			want = want[:len(want)-1]
		}
		assert.Equal(t, strings.Join(want, " "), rebuilt)
		assert.Equal(t, MakeID(d.Timestamp, d.PID), d.ID)
	}
}

func TestParser_ParseText_stable(t *testing.T) {
	a := Parser{}.ParseText([]byte(textListing))
	b := Parser{}.ParseText([]byte(textListing))
	assert.Equal(t, a, b)
}

func Test_parseTimestamp(t *testing.T) {
	got := parseTimestamp("Sat 2023-06-17 01:50:45 UTC")
	assert.Equal(t, time.Date(2023, 6, 17, 1, 50, 45, 0, time.UTC), got.UTC())
	assert.True(t, parseTimestamp("yesterday").IsZero())
}

// stripTime zeroes the parsed time, so that tests don't depend on it.
func stripTime(dd []Dump) []Dump {
	if dd == nil {
		return nil
	}
	out := make([]Dump, len(dd))
	for i, d := range dd {
		d.Time = time.Time{}
		out[i] = d
	}
	return out
}
