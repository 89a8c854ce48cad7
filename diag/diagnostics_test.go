package diag

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/strager/scft/source"
)

func newDiagnostics(text string) *Diagnostics {
	return New(source.New("test.scft", text))
}

func TestSeverityTags(t *testing.T) {
	tests := []struct {
		sev  Severity
		tag  string
		name string
	}{
		{Error, "Error:", "error"},
		{Warning, "Warn::", "warning"},
		{Context, "   In:", "context"},
		{Empty, "------", "empty"},
	}
	for _, test := range tests {
		be.Equal(t, test.sev.Tag(), test.tag)
		be.Equal(t, len(test.sev.Tag()), TagLen)
		be.Equal(t, test.sev.String(), test.name)
	}
}

func TestFormatSingleLine(t *testing.T) {
	dx := newDiagnostics("x: Int = 1\ny = (2 + 3\n")
	dx.ErrorAt("Mismatched", source.Span{Begin: 15, End: 16})

	want := "Error:(line:2, col:5) Mismatched\n" +
		"        1   x: Int = 1\n" +
		"        2   y = (2 + 3\n" +
		"      ...       ^\n"
	be.Equal(t, dx.Format(), want)
}

func TestFormatFixNoteAndMargin(t *testing.T) {
	dx := newDiagnostics("  a = foo\n  b = bar")
	dx.ErrorAt("Unknown name", source.Span{Begin: 16, End: 19}).
		WithFix("Rename").
		WithNote("see docs")

	want := "Error:(line:2, col:7) Unknown name\n" +
		"        1   a = foo\n" +
		"        2   b = bar\n" +
		"      ...       ^-^  fix: Rename\n" +
		"         note: see docs\n"
	be.Equal(t, dx.Format(), want)
}

func TestFormatAfterToken(t *testing.T) {
	dx := newDiagnostics("x = (1")
	r := dx.AfterToken("Expected )", source.Span{Begin: 5, End: 6})
	be.Equal(t, r.Span, source.Span{Begin: 5, End: 6})
	be.Equal(t, r.Offset, 1)

	want := "Error:(line:1, col:7) Expected )\n" +
		"        1   x = (1\n" +
		"      ...         ^\n"
	be.Equal(t, dx.Format(), want)
}

func TestFormatSpanCrossingLines(t *testing.T) {
	dx := newDiagnostics("abc\ndef")
	dx.WarningAt("Spread out", source.Span{Begin: 1, End: 6})

	want := "Warn::(line:1, col:2) Spread out\n" +
		"        1   abc\n" +
		"      ...    ^-\n"
	be.Equal(t, dx.Format(), want)
}

func TestFormatTabs(t *testing.T) {
	dx := newDiagnostics("\tx = y")
	dx.ErrorAt("Bad", source.Span{Begin: 1, End: 2})

	want := "Error:(line:1, col:5) Bad\n" +
		"        1   x = y\n" +
		"      ...   ^\n"
	be.Equal(t, dx.Format(), want)
}

func TestFormatNonASCII(t *testing.T) {
	dx := newDiagnostics(`s = "héllo" @`)
	r := dx.ErrorAt("Unexpected", source.Span{Begin: 13, End: 14})

	want := "Error:(line:1, col:13) Unexpected\n" +
		"        1   s = \"héllo\" @\n" +
		"      ...               ^\n"
	be.Equal(t, dx.Format(), want)

	line, col := dx.Position(r)
	be.Equal(t, line, 1)
	be.Equal(t, col, 13)
}

func TestFormatMultibyteSpan(t *testing.T) {
	dx := newDiagnostics("x é y")
	dx.ErrorAt("One rune", source.Span{Begin: 2, End: 4})

	want := "Error:(line:1, col:3) One rune\n" +
		"        1   x é y\n" +
		"      ...     ^\n"
	be.Equal(t, dx.Format(), want)
}

func TestFormatWideRunes(t *testing.T) {
	dx := newDiagnostics("世界 = x")
	dx.ErrorAt("After", source.Span{Begin: 9, End: 10})

	want := "Error:(line:1, col:8) After\n" +
		"        1   世界 = x\n" +
		"      ...          ^\n"
	be.Equal(t, dx.Format(), want)
}

func TestFormatBlankLinesIgnoredForMargin(t *testing.T) {
	dx := newDiagnostics("  a\n\n  b")
	dx.ErrorAt("Here", source.Span{Begin: 7, End: 8})

	want := "Error:(line:3, col:3) Here\n" +
		"        1   a\n" +
		"        2   \n" +
		"        3   b\n" +
		"      ...   ^\n"
	be.Equal(t, dx.Format(), want)
}

func TestFormatShowsThreeLines(t *testing.T) {
	dx := newDiagnostics("a\nb\nc\nd\ne")
	dx.ErrorAt("Four", source.Span{Begin: 6, End: 7})

	want := "Error:(line:4, col:1) Four\n" +
		"        2   b\n" +
		"        3   c\n" +
		"        4   d\n" +
		"      ...   ^\n"
	be.Equal(t, dx.Format(), want)
}

func TestFormatWideLineNumbers(t *testing.T) {
	text := strings.Repeat("\n", 999) + "x"
	dx := newDiagnostics(text)
	dx.ErrorAt("Far", source.Span{Begin: 999, End: 1000})

	want := "Error:(line:1000, col:1) Far\n" +
		"       998   \n" +
		"       999   \n" +
		"      1000   x\n" +
		"       ...   ^\n"
	be.Equal(t, dx.Format(), want)
}

func TestFormatStyler(t *testing.T) {
	dx := newDiagnostics("x")
	dx.Styler = func(sev Severity, tag string) string {
		return "<" + sev.String() + ">" + tag
	}
	dx.ErrorAt("Styled", source.Span{Begin: 0, End: 1})
	be.True(t, strings.HasPrefix(dx.Format(), "<error>Error:(line:1, col:1) Styled\n"))
}

func TestEmit(t *testing.T) {
	dx := newDiagnostics("x")
	dx.ErrorAt("Oops", source.Span{Begin: 0, End: 1})
	out := dx.Emit()
	be.True(t, strings.HasPrefix(out, dx.Format()+"\n-- Finished in "))
	be.True(t, strings.HasSuffix(out, "ms"))

	empty := newDiagnostics("")
	be.True(t, strings.HasPrefix(empty.Emit(), "-- Finished in "))
}

func TestRecordClampsEmptySpan(t *testing.T) {
	dx := newDiagnostics("abc")
	r := dx.ErrorAt("Empty", source.Span{Begin: 2, End: 2})
	be.Equal(t, r.Span, source.Span{Begin: 2, End: 3})

	r = dx.AfterToken("Start", source.Span{})
	be.Equal(t, r.Span, source.Span{Begin: 0, End: 1})
	be.Equal(t, r.Offset, 0)
}

func TestRecoveringModeDiscards(t *testing.T) {
	dx := newDiagnostics("a b c d")
	dx.ErrorAt("first", source.Span{Begin: 0, End: 1})

	dx.BeginRecovery()
	be.True(t, dx.Recovering())
	dx.ErrorAt("hidden 1", source.Span{Begin: 2, End: 3})
	dx.BeginRecovery()
	dx.ErrorAt("hidden 2", source.Span{Begin: 4, End: 5})
	dx.EndRecovery()
	be.Equal(t, dx.Last().Message, "hidden 2")
	dx.EndRecovery()
	be.True(t, !dx.Recovering())

	dx.ErrorAt("second", source.Span{Begin: 6, End: 7})

	var kept []string
	for _, r := range dx.Records() {
		kept = append(kept, r.Message)
	}
	be.Equal(t, kept, []string{"first", "second"})
	be.Equal(t, len(dx.Discarded()), 2)
	be.True(t, !strings.Contains(dx.Format(), "hidden"))
}

func TestPopLast(t *testing.T) {
	dx := newDiagnostics("a b")
	dx.ErrorAt("first", source.Span{Begin: 0, End: 1})
	dx.ErrorAt("second", source.Span{Begin: 2, End: 3})
	dx.PopLast()
	be.Equal(t, dx.Len(), 1)
	be.Equal(t, dx.Last().Message, "first")
}

func TestHasErrors(t *testing.T) {
	dx := newDiagnostics("a;")
	be.True(t, !dx.HasErrors())
	dx.WarningAt("Unnecessary semicolon", source.Span{Begin: 1, End: 2})
	be.True(t, !dx.HasErrors())
	be.Equal(t, dx.Len(), 1)
	dx.ErrorAt("Bad", source.Span{Begin: 0, End: 1})
	be.True(t, dx.HasErrors())
	be.Equal(t, dx.ErrorCount(), 1)
}

func TestChaining(t *testing.T) {
	dx := newDiagnostics("a")
	r := dx.ErrorAt("Bad", source.Span{Begin: 0, End: 1}).
		WithSeverity(Empty).
		WithFix("fix it").
		WithNote("note")
	be.Equal(t, r.Severity, Empty)
	be.Equal(t, r.Fix, "fix it")
	be.Equal(t, r.Note, "note")
}

func TestPosition(t *testing.T) {
	dx := newDiagnostics("ab\n\tcd")
	r := dx.ErrorAt("x", source.Span{Begin: 4, End: 5})
	line, col := dx.Position(r)
	be.Equal(t, line, 2)
	be.Equal(t, col, 5)

	r = dx.AfterToken("y", source.Span{Begin: 0, End: 2})
	line, col = dx.Position(r)
	be.Equal(t, line, 1)
	be.Equal(t, col, 3)
}

func TestInvariantPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(dx *Diagnostics)
	}{
		{"Last", func(dx *Diagnostics) { dx.Last() }},
		{"PopLast", func(dx *Diagnostics) { dx.PopLast() }},
		{"EndRecovery", func(dx *Diagnostics) { dx.EndRecovery() }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			defer func() {
				be.True(t, recover() != nil)
			}()
			test.fn(newDiagnostics(""))
		})
	}
}
