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

// Package coredump contains the data model for systemd-coredump records and
// the parsers for the output of coredumpctl and gdb.  Nothing in this package
// starts processes; it only turns bytes into records.
package coredump

import (
	"time"
)

// Dump is one crash dump known to systemd-coredump.
type Dump struct {
	// ID is derived at parse time, see [MakeID].
	ID        string `json:"id"`
	PID       string `json:"pid"`
	UID       string `json:"uid"`
	GID       string `json:"gid"`
	Signal    string `json:"signal"`
	Timestamp string `json:"timestamp"`
	// Corefile is the corefile status reported by the listing, i.e.
	// "present" or "missing".
	Corefile   string `json:"corefile,omitempty"`
	Executable string `json:"exe"`

	// populated lazily by the detail call.
	CommandLine string `json:"commandLine,omitempty"`
	Hostname    string `json:"hostname,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Storage     string `json:"storage,omitempty"`

	// ExtractedPath is set once the dump has been written to a file.
	ExtractedPath string `json:"extractedPath,omitempty"`

	// Time is the parsed Timestamp, zero if it could not be parsed.
	Time time.Time `json:"-"`
}

// MakeID returns the dump identifier for the timestamp and pid.
func MakeID(timestamp, pid string) string {
	return timestamp + "-" + pid
}

// IsPresent reports whether the backing corefile is still on disk.
func (d *Dump) IsPresent() bool {
	return d.Corefile == StatusPresent
}

// StackTrace is the backtrace derived from a dump.  It is computed on demand
// and never cached.
type StackTrace struct {
	DumpID string `json:"dumpId,omitempty"`
	// ThreadID is the id of the last thread header seen in the debugger
	// output.
	ThreadID string  `json:"threadId,omitempty"`
	Signal   string  `json:"signal"`
	Frames   []Frame `json:"frames"`
}

// Frame is a single call stack level.
type Frame struct {
	Index    int    `json:"index"`
	Thread   string `json:"thread,omitempty"`
	Address  string `json:"address,omitempty"`
	Function string `json:"function,omitempty"`
	Args     string `json:"args,omitempty"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	// From is the shared object, when the debugger has no source location.
	From string `json:"from,omitempty"`
}
