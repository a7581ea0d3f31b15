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
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2023-06-16T16:50:45Z
const usec = 1686934245000000

// brokenListing is what coredumpctl prints: no commas between objects.
const brokenListing = `[
	{
		"time" : 1686934245000000,
		"pid" : 2465,
		"uid" : 1000,
		"gid" : 100,
		"sig" : 6,
		"corefile" : "present",
		"exe" : "/usr/bin/cuteime",
		"size" : 1572864
	}
	{
		"time" : 1686934245000001,
		"pid" : 3001,
		"uid" : 1000,
		"gid" : 100,
		"sig" : 11,
		"corefile" : "missing",
		"exe" : "/usr/bin/other"
	}
]`

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "adjacent objects",
			input: `[{"a":1}{"b":2}]`,
			want:  `[{"a":1},{"b":2}]`,
		},
		{
			name:  "adjacent objects with whitespace",
			input: "[{\"a\":1}\n  {\"b\":2}]",
			want:  `[{"a":1},{"b":2}]`,
		},
		{
			name:  "missing brackets",
			input: `{"a":1}{"b":2}`,
			want:  `[{"a":1},{"b":2}]`,
		},
		{
			name:  "trailing comma",
			input: `[{"a":1},{"b":2},]`,
			want:  `[{"a":1},{"b":2}]`,
		},
		{
			name:  "valid array is not changed",
			input: `[{"a":1},{"b":2}]`,
			want:  `[{"a":1},{"b":2}]`,
		},
		{
			name:  "empty array",
			input: "[]",
			want:  "[]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RepairJSON([]byte(tt.input))
			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, string(got), string(RepairJSON(got)), "must be idempotent")
		})
	}
}

func TestRepairJSON_validDecodesTheSame(t *testing.T) {
	valid := `[
		{"time": 1686934245000000, "pid": 2465, "uid": 1000, "gid": 100, "sig": 6, "corefile": "present", "exe": "/usr/bin/cuteime"},
		{"time": 1686934245000001, "pid": 3001, "uid": 1000, "gid": 100, "sig": 11, "corefile": "missing", "exe": "/usr/bin/other"}
	]`
	var direct, repaired []jsonDump
	require.NoError(t, json.Unmarshal([]byte(valid), &direct))
	require.NoError(t, json.Unmarshal(RepairJSON([]byte(valid)), &repaired))
	assert.Equal(t, direct, repaired)
}

func TestSplitObjects(t *testing.T) {
	input := "junk {pid: 1,\n   sig:\t6} more {\"pid\": 2} {unterminated"
	got := SplitObjects([]byte(input))
	require.Len(t, got, 2)
	assert.Equal(t, `{"pid": 1, "sig": 6}`, string(got[0]))
	assert.Equal(t, `{"pid": 2}`, string(got[1]))
}

func TestParser_ParseJSON(t *testing.T) {
	tests := []struct {
		name        string
		onlyPresent bool
		input       string
		want        []Dump
		wantErr     error
	}{
		{
			name:  "broken coredumpctl output",
			input: brokenListing,
			want: []Dump{
				{
					ID:         "Fri 2023-06-16 16:50:45 UTC-2465",
					PID:        "2465",
					UID:        "1000",
					GID:        "100",
					Signal:     "SIGABRT",
					Timestamp:  "Fri 2023-06-16 16:50:45 UTC",
					Corefile:   "present",
					Executable: "/usr/bin/cuteime",
					Time:       time.UnixMicro(usec).In(time.UTC),
				},
				{
					ID:         "Fri 2023-06-16 16:50:45 UTC-3001",
					PID:        "3001",
					UID:        "1000",
					GID:        "100",
					Signal:     "SIGSEGV",
					Timestamp:  "Fri 2023-06-16 16:50:45 UTC",
					Corefile:   "missing",
					Executable: "/usr/bin/other",
					Time:       time.UnixMicro(usec + 1).In(time.UTC),
				},
			},
		},
		{
			name:        "only present",
			onlyPresent: true,
			input:       brokenListing,
			want: []Dump{
				{
					ID:         "Fri 2023-06-16 16:50:45 UTC-2465",
					PID:        "2465",
					UID:        "1000",
					GID:        "100",
					Signal:     "SIGABRT",
					Timestamp:  "Fri 2023-06-16 16:50:45 UTC",
					Corefile:   "present",
					Executable: "/usr/bin/cuteime",
					Time:       time.UnixMicro(usec).In(time.UTC),
				},
			},
		},
		{
			name:  "bare keys fall back to per-object decoding and drop bad objects",
			input: `[{time: 1686934245000000, pid: 2465, uid: 1000, gid: 100, sig: 23, corefile: "present", exe: "/usr/bin/a"} {pid: ??? } ]`,
			want: []Dump{
				{
					ID:         "Fri 2023-06-16 16:50:45 UTC-2465",
					PID:        "2465",
					UID:        "1000",
					GID:        "100",
					Signal:     "SIG23",
					Timestamp:  "Fri 2023-06-16 16:50:45 UTC",
					Corefile:   "present",
					Executable: "/usr/bin/a",
					Time:       time.UnixMicro(usec).In(time.UTC),
				},
			},
		},
		{
			name:  "empty array",
			input: "[]",
			want:  []Dump{},
		},
		{
			name:  "empty input",
			input: "  \n",
			want:  nil,
		},
		{
			name:    "nothing decodable",
			input:   "No coredumps found.",
			wantErr: ErrUnparseable,
		},
		{
			name:    "all objects bad",
			input:   "{???} {!!!}",
			wantErr: ErrUnparseable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parser{OnlyPresent: tt.onlyPresent, Location: time.UTC}
			got, err := p.ParseJSON([]byte(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParser_ParseJSON_sameIDs(t *testing.T) {
	p := Parser{Location: time.UTC}
	a, err := p.ParseJSON([]byte(brokenListing))
	require.NoError(t, err)
	b, err := p.ParseJSON([]byte(brokenListing))
	require.NoError(t, err)
	require.Len(t, a, 2)
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
		assert.Equal(t, MakeID(a[i].Timestamp, a[i].PID), a[i].ID)
	}
}
