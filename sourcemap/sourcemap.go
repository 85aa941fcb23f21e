// Package sourcemap wraps a source buffer and answers line/column
// questions about byte offsets into it.
package sourcemap

import "fmt"

// Location is a position inside a Unit: a 1-based line and column plus
// the 0-based byte offset it was derived from.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Unit is an immutable named source buffer with precomputed line spans.
type Unit struct {
	name       string
	data       []byte
	lineStarts []int // byte offset of the first byte of each line
}

// New wraps data under the given name, precomputing line boundaries.
// An empty buffer still has exactly one (empty) line, matching spec.md's
// "an empty buffer still has one line" rule.
func New(name string, data []byte) *Unit {
	u := &Unit{name: name, data: data, lineStarts: []int{0}}

	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\n':
			u.lineStarts = append(u.lineStarts, i+1)
		case '\r':
			// Treat CRLF as one line break; skip the paired \n.
			if i+1 < len(data) && data[i+1] == '\n' {
				i++
			}
			u.lineStarts = append(u.lineStarts, i+1)
		}
	}

	return u
}

// NewAnonymous wraps data with no filename, for in-memory or test use.
func NewAnonymous(data []byte) *Unit {
	return New("", data)
}

// Name returns the unit's name, or "" for an anonymous unit.
func (u *Unit) Name() string { return u.name }

// Bytes returns the underlying buffer. Callers must not mutate it.
func (u *Unit) Bytes() []byte { return u.data }

// Len returns the number of bytes in the buffer.
func (u *Unit) Len() int { return len(u.data) }

// LineCount returns the number of lines in the buffer.
func (u *Unit) LineCount() int { return len(u.lineStarts) }

// LocationAt resolves a byte offset to a Location. Offsets past the end of
// the buffer map to no Location, per spec.md §3.
func (u *Unit) LocationAt(offset int) (Location, bool) {
	if offset < 0 || offset > len(u.data) {
		return Location{}, false
	}

	line := u.lineForOffset(offset)
	column := offset - u.lineStarts[line] + 1

	return Location{Line: line + 1, Column: column, Offset: offset}, true
}

// lineForOffset returns the 0-based line index containing offset, via
// binary search over the precomputed line starts.
func (u *Unit) lineForOffset(offset int) int {
	lo, hi := 0, len(u.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if u.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// LineText returns the raw text of the given 1-based line number, with any
// trailing line terminator stripped.
func (u *Unit) LineText(line int) (string, bool) {
	if line < 1 || line > len(u.lineStarts) {
		return "", false
	}

	start := u.lineStarts[line-1]
	end := len(u.data)
	if line < len(u.lineStarts) {
		end = u.lineStarts[line] - 1
		if end > start && u.data[end-1] == '\r' {
			end--
		}
	} else if end > start && u.data[end-1] == '\r' {
		end--
	}

	return string(u.data[start:end]), true
}
