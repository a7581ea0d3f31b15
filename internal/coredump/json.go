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

// In this file: the parser for the JSON coredumpctl listing, and the repair
// functions for its broken output.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrUnparseable is returned when neither the bulk repair nor the per-object
// fallback was able to decode anything from the listing.
var ErrUnparseable = errors.New("unparseable coredump listing")

var (
	// reAdjacent matches two objects not separated by a comma.
	reAdjacent = regexp.MustCompile(`}\s*{`)
	// reTrailingComma matches a comma before the closing bracket.
	reTrailingComma = regexp.MustCompile(`,\s*]`)
	// reObject matches a non-nested object.
	reObject = regexp.MustCompile(`{[^{}]*}`)
	// reSpace matches runs of whitespace.
	reSpace = regexp.MustCompile(`\s+`)
	// reBareKey matches an unquoted identifier-style key.
	reBareKey = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)

// RepairJSON fixes the array of records printed by "coredumpctl list
// --json=...": objects are printed without commas between them, and the array
// brackets may be missing.  It does not touch already valid arrays.
func RepairJSON(data []byte) []byte {
	b := bytes.TrimSpace(data)
	b = reAdjacent.ReplaceAll(b, []byte("},{"))
	b = bytes.TrimLeft(b, ",")
	if !bytes.HasPrefix(b, []byte("[")) {
		b = append([]byte("["), b...)
	}
	b = bytes.TrimRight(b, ",")
	if !bytes.HasSuffix(b, []byte("]")) {
		b = append(b, ']')
	}
	b = reTrailingComma.ReplaceAll(b, []byte("]"))
	return b
}

// SplitObjects extracts every object from data independently, normalising
// whitespace and quoting bare keys.  The listing never contains nested
// objects, so the objects are not nested either.
func SplitObjects(data []byte) [][]byte {
	found := reObject.FindAll(data, -1)
	objs := make([][]byte, 0, len(found))
	for _, o := range found {
		o = reSpace.ReplaceAll(o, []byte(" "))
		o = reBareKey.ReplaceAll(o, []byte(`$1"$2":`))
		objs = append(objs, o)
	}
	return objs
}

// jsonDump is the record in the JSON listing.
type jsonDump struct {
	Time     json.Number `json:"time"` // microseconds since epoch
	PID      json.Number `json:"pid"`
	UID      json.Number `json:"uid"`
	GID      json.Number `json:"gid"`
	Sig      json.Number `json:"sig"`
	Corefile string      `json:"corefile"`
	Exe      string      `json:"exe"`
	Size     json.Number `json:"size,omitempty"`
}

// ParseJSON parses the JSON output of "coredumpctl list --json=pretty".  It
// repairs the output first, and if that fails, decodes each object on its
// own, dropping the ones that can't be decoded.  ErrUnparseable is returned
// only if nothing could be decoded from non-empty input.
func ParseJSON(data []byte) ([]Dump, error) {
	return Parser{}.ParseJSON(data)
}

// ParseJSON is like the package level [ParseJSON], but applies the parser
// options.
func (p Parser) ParseJSON(data []byte) ([]Dump, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var recs []jsonDump
	if err := json.Unmarshal(RepairJSON(data), &recs); err != nil {
		recs, err = decodeEach(data)
		if err != nil {
			return nil, err
		}
	}
	dumps := make([]Dump, 0, len(recs))
	for _, r := range recs {
		if p.OnlyPresent && r.Corefile != StatusPresent {
			continue
		}
		dumps = append(dumps, r.dump(p.location()))
	}
	return dumps, nil
}

// decodeEach is the fallback path for the output that could not be repaired.
func decodeEach(data []byte) ([]jsonDump, error) {
	objs := SplitObjects(data)
	if len(objs) == 0 {
		return nil, fmt.Errorf("%w: no objects found", ErrUnparseable)
	}
	recs := make([]jsonDump, 0, len(objs))
	for _, o := range objs {
		var r jsonDump
		if err := json.Unmarshal(o, &r); err != nil {
			continue
		}
		recs = append(recs, r)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: none of %d objects could be decoded", ErrUnparseable, len(objs))
	}
	return recs, nil
}

func (r jsonDump) dump(loc *time.Location) Dump {
	var (
		t   time.Time
		ts  string
		pid = r.PID.String()
	)
	if usec, err := r.Time.Int64(); err == nil {
		t = time.UnixMicro(usec).In(loc)
		ts = t.Format(timestampLayout)
	} else {
		ts = r.Time.String()
	}
	return Dump{
		ID:         MakeID(ts, pid),
		PID:        pid,
		UID:        r.UID.String(),
		GID:        r.GID.String(),
		Signal:     signalFromNumber(r.Sig),
		Timestamp:  ts,
		Corefile:   r.Corefile,
		Executable: r.Exe,
		Time:       t,
	}
}

func signalFromNumber(n json.Number) string {
	code, err := strconv.Atoi(n.String())
	if err != nil {
		return n.String()
	}
	return SignalName(code)
}
