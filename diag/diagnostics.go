// Package diag collects located compiler diagnostics and renders them with
// source context.
package diag

import (
	"time"

	"github.com/strager/scft/source"
)

// Severity classifies a Record. Context and Empty records annotate the
// error recorded just before them.
type Severity int

const (
	Error Severity = iota
	Warning
	Context
	Empty
)

// TagLen is the width of every severity tag.
const TagLen = 6

// Tag returns the fixed-width label printed at the start of a record.
func (s Severity) Tag() string {
	switch s {
	case Error:
		return "Error:"
	case Warning:
		return "Warn::"
	case Context:
		return "   In:"
	default:
		return "------"
	}
}

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Context:
		return "context"
	default:
		return "empty"
	}
}

// Record is one diagnostic message attached to a span of source.
type Record struct {
	Severity Severity
	Span     source.Span
	// Offset shifts the caret right, used to point just past a token.
	Offset  int
	Message string
	Fix     string
	Note    string
}

// WithFix attaches a suggested fix and returns r for chaining.
func (r *Record) WithFix(fix string) *Record {
	r.Fix = fix
	return r
}

// WithNote attaches an explanatory note and returns r for chaining.
func (r *Record) WithNote(note string) *Record {
	r.Note = note
	return r
}

// WithSeverity changes the severity and returns r for chaining.
func (r *Record) WithSeverity(s Severity) *Record {
	r.Severity = s
	return r
}

// Styler decorates a severity tag, for example with terminal colors.
type Styler func(sev Severity, tag string) string

// Diagnostics is the single sink for lexer and parser messages.
type Diagnostics struct {
	src *source.Buffer

	records    []*Record
	discarded  []*Record
	recovering int

	start time.Time

	// Styler, when set, is applied to every tag printed by Format.
	Styler Styler
}

// New returns an empty Diagnostics for src. The timer reported by Emit
// starts here.
func New(src *source.Buffer) *Diagnostics {
	return &Diagnostics{src: src, start: time.Now()}
}

// Source returns the buffer the diagnostics refer to.
func (d *Diagnostics) Source() *source.Buffer {
	return d.src
}

// Record appends a new record. While recovering, the record goes to the
// discard list and never appears in the report.
func (d *Diagnostics) Record(sev Severity, msg string, span source.Span) *Record {
	if span.Begin < 0 {
		span.Begin = 0
	}
	if span.End <= span.Begin {
		span.End = span.Begin + 1
	}
	r := &Record{Severity: sev, Span: span, Message: msg}
	if d.recovering > 0 {
		d.discarded = append(d.discarded, r)
	} else {
		d.records = append(d.records, r)
	}
	return r
}

// ErrorAt records an error covering span.
func (d *Diagnostics) ErrorAt(msg string, span source.Span) *Record {
	return d.Record(Error, msg, span)
}

// WarningAt records a warning covering span.
func (d *Diagnostics) WarningAt(msg string, span source.Span) *Record {
	return d.Record(Warning, msg, span)
}

// AfterToken records an error pointing just past the token at span.
func (d *Diagnostics) AfterToken(msg string, span source.Span) *Record {
	if span.End <= 0 {
		return d.Record(Error, msg, source.Span{Begin: 0, End: 1})
	}
	r := d.Record(Error, msg, source.Span{Begin: span.End - 1, End: span.End})
	r.Offset = 1
	return r
}

// BeginRecovery starts discarding records. Calls nest.
func (d *Diagnostics) BeginRecovery() {
	d.recovering++
}

// EndRecovery undoes one BeginRecovery.
func (d *Diagnostics) EndRecovery() {
	if d.recovering == 0 {
		panic("diag: EndRecovery without BeginRecovery")
	}
	d.recovering--
}

// Recovering reports whether records are currently discarded.
func (d *Diagnostics) Recovering() bool {
	return d.recovering > 0
}

func (d *Diagnostics) active() *[]*Record {
	if d.recovering > 0 {
		return &d.discarded
	}
	return &d.records
}

// Last returns the most recent record of the list currently written to.
//
// Panics if that list is empty.
func (d *Diagnostics) Last() *Record {
	list := *d.active()
	if len(list) == 0 {
		panic("diag: no record was ever added")
	}
	return list[len(list)-1]
}

// PopLast removes the most recent record of the list currently written to.
//
// Panics if that list is empty.
func (d *Diagnostics) PopLast() {
	list := d.active()
	if len(*list) == 0 {
		panic("diag: PopLast on empty list")
	}
	*list = (*list)[:len(*list)-1]
}

// HasErrors reports whether any error-severity record was kept.
func (d *Diagnostics) HasErrors() bool {
	return d.ErrorCount() > 0
}

// ErrorCount returns the number of kept error-severity records.
func (d *Diagnostics) ErrorCount() int {
	n := 0
	for _, r := range d.records {
		if r.Severity == Error {
			n++
		}
	}
	return n
}

// Len returns the number of kept records.
func (d *Diagnostics) Len() int {
	return len(d.records)
}

// ActiveLen returns the length of the list currently written to, which
// is the discarded list while recovering.
func (d *Diagnostics) ActiveLen() int {
	return len(*d.active())
}

// Records returns the kept records in insertion order.
func (d *Diagnostics) Records() []*Record {
	return d.records
}

// Discarded returns records made while recovering.
func (d *Diagnostics) Discarded() []*Record {
	return d.discarded
}

// Position returns the 1-based line and column shown for r.
func (d *Diagnostics) Position(r *Record) (line, col int) {
	l := d.src.LineAt(r.Span.Begin)
	return l.Number, d.src.Column(r.Span.Begin) + 1 + r.Offset
}
