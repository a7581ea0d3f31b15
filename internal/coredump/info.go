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
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

// Info holds the values recognised in the output of "coredumpctl info".
type Info struct {
	CommandLine string
	Hostname    string
	Executable  string
	Unit        string
	Storage     string
}

// info labels, as printed by coredumpctl.
const (
	labelCommandLine = "Command Line"
	labelHostname    = "Hostname"
	labelExecutable  = "Executable"
	labelUnit        = "Unit"
	labelStorage     = "Storage"
)

// reStorage matches the storage value with the status suffix, i.e.
// "/var/lib/systemd/coredump/core.x.zst (present)".
var reStorage = regexp.MustCompile(`^(.*?)\s+\(\w+\)$`)

// ParseInfo parses the "Label: value" lines of the "coredumpctl info" output.
// Unknown labels are ignored.  If the output describes more than one dump,
// the first value for each label wins.
func ParseInfo(data []byte) Info {
	var inf Info
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		label, value, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		label, value = strings.TrimSpace(label), strings.TrimSpace(value)
		switch label {
		case labelCommandLine:
			setOnce(&inf.CommandLine, value)
		case labelHostname:
			setOnce(&inf.Hostname, value)
		case labelExecutable:
			setOnce(&inf.Executable, value)
		case labelUnit:
			setOnce(&inf.Unit, value)
		case labelStorage:
			if value == StatusNone {
				continue
			}
			if m := reStorage.FindStringSubmatch(value); m != nil {
				value = m[1]
			}
			setOnce(&inf.Storage, value)
		}
	}
	return inf
}

func setOnce(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// Apply copies the detail values to d.  The executable replaces the one
// from the listing, which may be shortened.
func (inf Info) Apply(d *Dump) {
	if inf.CommandLine != "" {
		d.CommandLine = inf.CommandLine
	}
	if inf.Executable != "" {
		d.Executable = inf.Executable
	}
	if inf.Unit != "" {
		d.Unit = inf.Unit
	}
	if inf.Hostname != "" {
		d.Hostname = inf.Hostname
	}
	if inf.Storage != "" {
		d.Storage = inf.Storage
	}
}
