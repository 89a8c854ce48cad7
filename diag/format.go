package diag

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DisplayLines is how many source lines, ending at the record's line,
	// are shown under each message.
	DisplayLines = 3

	gutterTrailing = 3
	ellipsis       = "..."
)

// Format renders every kept record with its source context.
func (d *Diagnostics) Format() string {
	var sb strings.Builder
	for _, r := range d.records {
		d.formatRecord(&sb, r)
	}
	return sb.String()
}

// Emit renders the report followed by the time elapsed since New.
func (d *Diagnostics) Emit() string {
	elapsed := time.Since(d.start)
	ms := float64(elapsed.Nanoseconds()) / float64(time.Millisecond)
	report := d.Format()
	if report != "" {
		report += "\n"
	}
	return report + fmt.Sprintf("-- Finished in %fms", ms)
}

func (d *Diagnostics) tag(sev Severity) string {
	if d.Styler != nil {
		return d.Styler(sev, sev.Tag())
	}
	return sev.Tag()
}

func (d *Diagnostics) formatRecord(sb *strings.Builder, r *Record) {
	src := d.src
	errLine := src.LineAt(r.Span.Begin)
	ch := src.Width(errLine.Begin, min(r.Span.Begin, errLine.End))

	fmt.Fprintf(sb, "%s(line:%d, col:%d) %s\n", d.tag(r.Severity), errLine.Number, ch+1+r.Offset, r.Message)

	lines := src.Lines()
	first := max(0, errLine.Number-DisplayLines)
	shown := lines[first:errLine.Number]

	// Shared left margin, ignoring blank lines.
	margin := -1
	for _, l := range shown {
		if l.Blank() {
			continue
		}
		w := src.Width(l.Begin, l.Begin+l.Leading)
		if margin < 0 || w < margin {
			margin = w
		}
	}
	if margin < 0 {
		margin = 0
	}

	numLen := max(len(ellipsis), digits(errLine.Number))
	pad := strings.Repeat(" ", TagLen)
	for _, l := range shown {
		text := src.Expand(l, l.Begin)
		text = text[min(margin, len(text)):]
		sb.WriteString(pad)
		sb.WriteString(strings.Repeat(" ", numLen-digits(l.Number)))
		sb.WriteString(strconv.Itoa(l.Number))
		sb.WriteString(strings.Repeat(" ", gutterTrailing))
		sb.Write(text)
		sb.WriteByte('\n')
	}

	sb.WriteString(pad)
	sb.WriteString(strings.Repeat(" ", numLen-len(ellipsis)))
	sb.WriteString(ellipsis)
	sb.WriteString(strings.Repeat(" ", max(0, gutterTrailing+ch-margin+r.Offset)))
	sb.WriteByte('^')
	if r.Span.Len() > 1 {
		if r.Span.End > errLine.End {
			// Clip to the first line.
			sb.WriteString(strings.Repeat("-", max(0, src.Width(r.Span.Begin, errLine.End)-1)))
		} else if w := src.Width(r.Span.Begin, r.Span.End); w > 1 {
			sb.WriteString(strings.Repeat("-", max(0, w-2)))
			sb.WriteByte('^')
		}
	}
	if r.Fix != "" {
		sb.WriteString("  fix: ")
		sb.WriteString(r.Fix)
	}
	sb.WriteByte('\n')
	if r.Note != "" {
		sb.WriteString(strings.Repeat(" ", TagLen+numLen))
		sb.WriteString("note: ")
		sb.WriteString(r.Note)
		sb.WriteByte('\n')
	}
}

func digits(n int) int {
	return len(strconv.Itoa(n))
}
