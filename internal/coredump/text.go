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

// In this file: the parser for the tabular coredumpctl listing.

import (
	"bufio"
	"bytes"
	"regexp"
	"slices"
	"strings"
	"time"
)

// Corefile status tokens as printed in the COREFILE column.
const (
	StatusPresent      = "present"
	StatusMissing      = "missing"
	StatusNone         = "none"
	StatusInaccessible = "inaccessible"
	StatusJournal      = "journal"
	StatusError        = "error"
	StatusTruncated    = "truncated"
)

var corefileStatuses = []string{
	StatusPresent,
	StatusMissing,
	StatusNone,
	StatusInaccessible,
	StatusJournal,
	StatusError,
	StatusTruncated,
}

const (
	// minTokens is the minimum number of tokens in a parseable row:
	// at least one timestamp token, pid, uid, gid, signal, status and exe.
	minTokens = 7
	// statusMinIdx is the smallest index that the status token may have.
	statusMinIdx = 5
)

// timestampLayout is the layout coredumpctl uses for the TIME column.
const timestampLayout = "Mon 2006-01-02 15:04:05 MST"

// reSize matches the trailing SIZE column, i.e. "1.5M", "530B", "-" or "n/a".
// coredumpctl always prints a unit, so bare numbers are not sizes.
var reSize = regexp.MustCompile(`^(?:\d+(?:\.\d+)?[BKMGTPE]|-|n/a)$`)

// sizeColumn tells whether the listing has the SIZE column.
type sizeColumn int

const (
	sizeUnknown sizeColumn = iota // no header seen, guess by the last token
	sizeAbsent
	sizePresent
)

// Parser parses coredumpctl listings.  The zero value is ready to use.
type Parser struct {
	// OnlyPresent restricts the output to dumps which corefile is present.
	OnlyPresent bool
	// Location is used to format timestamps in the JSON listing.  If nil,
	// time.Local is used.
	Location *time.Location
}

func (p Parser) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// ParseText parses the tabular output of "coredumpctl list".  Lines that
// can't be parsed are skipped, so it never fails.
func (p Parser) ParseText(data []byte) []Dump {
	var dumps []Dump
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	size := sizeUnknown
	for sc.Scan() {
		if hdr := strings.Fields(sc.Text()); len(hdr) > 0 && hdr[0] == "TIME" {
			size = sizeAbsent
			if slices.Contains(hdr, "SIZE") {
				size = sizePresent
			}
			continue
		}
		d, ok := parseRow(sc.Text(), size)
		if !ok {
			continue
		}
		if p.OnlyPresent && !d.IsPresent() {
			continue
		}
		dumps = append(dumps, d)
	}
	return dumps
}

// parseRow parses a single row of the listing.  It returns false if the
// row is a header, is too short, or has no recognisable corefile status.
func parseRow(line string, size sizeColumn) (Dump, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < minTokens {
		return Dump{}, false
	}
	if tokens[0] == "TIME" {
		return Dump{}, false
	}
	status := findStatus(tokens)
	if status < 0 {
		return Dump{}, false
	}
	// SIZE is the last column, but only if there's something else after the
	// status, otherwise it's the executable.
	if size != sizeAbsent && len(tokens)-status > 2 && reSize.MatchString(tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}
	if status == len(tokens)-1 {
		return Dump{}, false // no executable
	}

	var (
		signal = tokens[status-1]
		gid    = tokens[status-2]
		uid    = tokens[status-3]
		pid    = tokens[status-4]
		ts     = strings.Join(tokens[:status-4], " ")
	)
	d := Dump{
		ID:         MakeID(ts, pid),
		PID:        pid,
		UID:        uid,
		GID:        gid,
		Signal:     signal,
		Timestamp:  ts,
		Corefile:   tokens[status],
		Executable: strings.Join(tokens[status+1:], " "),
		Time:       parseTimestamp(ts),
	}
	return d, true
}

// findStatus returns the index of the corefile status token, or -1.
func findStatus(tokens []string) int {
	for i := statusMinIdx; i < len(tokens); i++ {
		if slices.Contains(corefileStatuses, tokens[i]) {
			return i
		}
	}
	return -1
}

// parseTimestamp tries to parse the coredumpctl timestamp.  It returns zero
// time if it can't.
func parseTimestamp(ts string) time.Time {
	t, err := time.Parse(timestampLayout, ts)
	if err != nil {
		return time.Time{}
	}
	return t
}
