// Package source holds compiler input text and maps byte offsets to lines
// and columns.
package source

import (
	"fmt"
	"os"
	"sort"

	"github.com/mattn/go-runewidth"
)

// TabWidth is the number of columns a tab character advances.
const TabWidth = 4

// Span is a half-open [Begin, End) byte range into a Buffer.
type Span struct {
	Begin int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Begin
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return s.Begin <= other.Begin && other.End <= s.End
}

// Join returns the smallest span covering both a and b.
func Join(a, b Span) Span {
	return Span{Begin: min(a.Begin, b.Begin), End: max(a.End, b.End)}
}

// Line describes one line of a Buffer. End excludes the newline.
type Line struct {
	Number  int // 1-based
	Leading int // bytes of leading whitespace
	Begin   int
	End     int
}

// Blank reports whether the line holds nothing but whitespace.
func (l Line) Blank() bool {
	return l.Begin+l.Leading == l.End
}

// Buffer is the raw text of one source file.
type Buffer struct {
	Path string
	Text string

	lines []Line
}

// New wraps text in a Buffer. The path is only used for display.
func New(path, text string) *Buffer {
	return &Buffer{Path: path, Text: text}
}

// ReadFile loads a Buffer from disk.
func ReadFile(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return New(path, string(data)), nil
}

// Len returns the size of the text in bytes.
func (b *Buffer) Len() int {
	return len(b.Text)
}

// Slice returns the text covered by span, clamped to the buffer.
func (b *Buffer) Slice(span Span) string {
	begin := max(0, min(span.Begin, len(b.Text)))
	end := max(begin, min(span.End, len(b.Text)))
	return b.Text[begin:end]
}

// Lines returns the line index, building it on first use.
func (b *Buffer) Lines() []Line {
	if b.lines == nil {
		b.lines = indexLines(b.Text)
	}
	return b.lines
}

// LineAt returns the line containing offset. Offsets at or past the end of
// the text belong to the last line.
func (b *Buffer) LineAt(offset int) Line {
	lines := b.Lines()
	// First line whose End is >= offset. A newline byte belongs to the line it
	// terminates.
	i := sort.Search(len(lines), func(i int) bool {
		return lines[i].End >= offset
	})
	if i == len(lines) {
		i = len(lines) - 1
	}
	return lines[i]
}

// Column returns the 0-based display column of offset, expanding tabs.
func (b *Buffer) Column(offset int) int {
	line := b.LineAt(offset)
	return b.Width(line.Begin, min(offset, line.End))
}

// Expand returns the text of line with tabs replaced by spaces, starting
// at byte offset from (which must lie within the line).
func (b *Buffer) Expand(line Line, from int) []byte {
	var out []byte
	for i := from; i < line.End; i++ {
		if b.Text[i] == '\t' {
			for range TabWidth {
				out = append(out, ' ')
			}
			continue
		}
		out = append(out, b.Text[i])
	}
	return out
}

// Width returns the display width of the text in [begin, end). Tabs count
// as TabWidth and other runes as wide as a terminal draws them.
func (b *Buffer) Width(begin, end int) int {
	col := 0
	for _, r := range b.Text[begin:end] {
		if r == '\t' {
			col += TabWidth
		} else {
			col += runewidth.RuneWidth(r)
		}
	}
	return col
}

// IsWhitespace reports whether c is skipped between tokens.
func IsWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func indexLines(text string) []Line {
	lines := []Line{}
	begin := 0
	for n := 1; ; n++ {
		end := begin
		for end < len(text) && text[end] != '\n' {
			end++
		}
		leading := 0
		for begin+leading < end && IsWhitespace(text[begin+leading]) {
			leading++
		}
		lines = append(lines, Line{Number: n, Leading: leading, Begin: begin, End: end})
		if end >= len(text) {
			return lines
		}
		begin = end + 1
	}
}
