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

// In this file: gdb backtrace parser and formatter.

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var (
	// reThread matches the thread header printed by "thread apply all", i.e.
	//
	//	Thread 1 (Thread 0x7f2b5c9ff740 (LWP 2465)):
	reThread = regexp.MustCompile(`^Thread\s+(\d+)`)
	// reFrame matches the head of a frame line, i.e.
	//
	//	#0  0x00007f2b5ca8e9fc in __pthread_kill_implementation (threadid=<optimized out>, signo=6) at ./nptl/pthread_kill.c:44
	//	#1  0x00007f2b5ca42476 in raise () from /lib/x86_64-linux-gnu/libc.so.6
	//	#2  main () at crash.c:27
	//
	// The rest of the line is split by parseCall.
	reFrame = regexp.MustCompile(`^#(\d+)\s+(?:(0x[0-9a-fA-F]+)\s+in\s+)?(.+?)\s*$`)
	// reFileLine matches the "file:line" that follows " at ".
	reFileLine = regexp.MustCompile(`^(.+):(\d+)$`)
)

// ParseBacktrace parses the gdb output of "thread apply all bt".  Lines that
// are neither thread headers nor frames are ignored.
func ParseBacktrace(r io.Reader) (StackTrace, error) {
	var st StackTrace
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if m := reThread.FindStringSubmatch(line); m != nil {
			st.ThreadID = m[1]
			continue
		}
		if f, ok := parseFrame(line); ok {
			f.Thread = st.ThreadID
			st.Frames = append(st.Frames, f)
		}
	}
	if err := sc.Err(); err != nil {
		return st, fmt.Errorf("reading backtrace: %w", err)
	}
	return st, nil
}

func parseFrame(line string) (Frame, bool) {
	m := reFrame.FindStringSubmatch(line)
	if m == nil {
		return Frame{}, false
	}
	idx, err := strconv.Atoi(m[1])
	if err != nil {
		return Frame{}, false
	}
	f := Frame{
		Index:   idx,
		Address: m[2],
	}
	call := m[3]
	if i := strings.LastIndex(call, ") at "); i >= 0 {
		if fl := reFileLine.FindStringSubmatch(strings.TrimSpace(call[i+len(") at "):])); fl != nil {
			f.File = fl[1]
			f.Line, _ = strconv.Atoi(fl[2])
			call = call[:i+1]
		}
	} else if i := strings.LastIndex(call, ") from "); i >= 0 {
		if lib := strings.TrimSpace(call[i+len(") from "):]); lib != "" && !strings.ContainsAny(lib, " \t") {
			f.From = lib
			call = call[:i+1]
		}
	}
	fn, args, ok := parseCall(call)
	if !ok {
		return Frame{}, false
	}
	f.Function, f.Args = fn, args
	return f, true
}

// parseCall splits "function (args)" on the last balanced parenthesised
// group, so that C++ names like "operator()() const" stay in the function.
func parseCall(s string) (fn string, args string, ok bool) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, ")") {
		return "", "", false
	}
	depth := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				fn = strings.TrimSpace(s[:i])
				if fn == "" {
					return "", "", false
				}
				return fn, s[i+1 : len(s)-1], true
			}
		}
	}
	return "", "", false
}

// Format writes the human readable stack trace to w.
func (st *StackTrace) Format(w io.Writer) error {
	var b strings.Builder
	if st.DumpID != "" {
		fmt.Fprintf(&b, "Stack trace for coredump %s\n", st.DumpID)
	}
	fmt.Fprintf(&b, "Signal: %s\n", st.Signal)
	if st.ThreadID != "" {
		fmt.Fprintf(&b, "Thread: %s\n", st.ThreadID)
	}
	if len(st.Frames) == 0 {
		b.WriteString("\nNo frames found.\n")
	}
	thread := "\x00"
	for _, f := range st.Frames {
		if f.Thread != thread {
			thread = f.Thread
			if thread != "" {
				fmt.Fprintf(&b, "\nThread %s:\n", thread)
			} else {
				b.WriteString("\n")
			}
		}
		b.WriteString(f.String())
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// String returns the formatted stack trace.
func (st *StackTrace) String() string {
	var b strings.Builder
	_ = st.Format(&b)
	return b.String()
}

// String returns the frame in the format close to the one of gdb.
func (f Frame) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%-3d", f.Index)
	if f.Address != "" {
		fmt.Fprintf(&b, " %s in", f.Address)
	}
	fn := f.Function
	if fn == "" {
		fn = "??"
	}
	fmt.Fprintf(&b, " %s (%s)", fn, f.Args)
	switch {
	case f.File != "":
		fmt.Fprintf(&b, " at %s:%d", f.File, f.Line)
	case f.From != "":
		fmt.Fprintf(&b, " from %s", f.From)
	}
	return b.String()
}
