package layout

import (
	"errors"
	"math"
	"strings"
	"testing"
	"unicode/utf8"
)

// fixedMeasurer 按字符数估算宽度：runes × size × 0.5。
type fixedMeasurer struct{}

func (fixedMeasurer) TextWidth(_ string, text string, size float64) (float64, error) {
	return float64(utf8.RuneCountInString(text)) * size * 0.5, nil
}

var errMeasure = errors.New("measure failed")

type failingMeasurer struct{}

func (failingMeasurer) TextWidth(string, string, float64) (float64, error) { return 0, errMeasure }

var (
	red  = Color{R: 255}
	blue = Color{B: 255}
)

func frag(text string, size float64) Fragment { return Fragment{Text: text, Size: size} }

func colored(text string, size float64, c Color) Fragment {
	return Fragment{Text: text, Size: size, Color: &c}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func breakAll(t *testing.T, frags []Fragment, width float64, wrap bool) []Line {
	t.Helper()
	pieces, err := MeasureAll(fixedMeasurer{}, frags, Box{}.withDefaults().defaults())
	if err != nil {
		t.Fatalf("measure failed: %v", err)
	}
	lines, err := BreakLines(fixedMeasurer{}, pieces, width, wrap)
	if err != nil {
		t.Fatalf("break failed: %v", err)
	}
	return lines
}

func lineTexts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = ln.Text()
	}
	return out
}

func TestSplitWordsRoundTrip(t *testing.T) {
	for _, text := range []string{"", "word", "  hello  world\t!", "a b c ", "多 字节　文本", "bad\xffutf8 x"} {
		f := Fragment{Text: text, Font: "Body", Size: 9, Break: true}
		parts := SplitWords(f)
		var joined strings.Builder
		for i, p := range parts {
			joined.WriteString(p.Text)
			if p.Font != "Body" || p.Size != 9 {
				t.Fatalf("%q: style not copied: %+v", text, p)
			}
			if p.Break != (i == 0) {
				t.Fatalf("%q: break flag must stay on the first part only", text)
			}
		}
		if joined.String() != text {
			t.Fatalf("round trip mismatch: %q != %q", joined.String(), text)
		}
	}
	parts := SplitWords(frag("  hello  world", 12))
	want := []string{"  ", "hello", "  ", "world"}
	if len(parts) != len(want) {
		t.Fatalf("expected %d parts, got %+v", len(want), parts)
	}
	for i := range want {
		if parts[i].Text != want[i] {
			t.Fatalf("part %d: expected %q, got %q", i, want[i], parts[i].Text)
		}
	}
}

func TestMeasureResolvesDefaults(t *testing.T) {
	op := 0.5
	def := Box{Font: "Body", FontSize: 10, Color: &blue, Opacity: &op}.withDefaults().defaults()

	p, err := Measure(fixedMeasurer{}, Fragment{Text: "abcd"}, def)
	if err != nil {
		t.Fatalf("measure failed: %v", err)
	}
	if p.Style.Font != "Body" || p.Style.Size != 10 || !p.Style.Color.Equal(blue) || p.Style.Opacity != 0.5 {
		t.Fatalf("defaults not applied: %+v", p.Style)
	}
	if p.Width != 20 {
		t.Fatalf("expected width 20, got %g", p.Width)
	}

	over := 3.0
	p, err = Measure(fixedMeasurer{}, Fragment{Text: "ab", Font: "Bold", Size: 20, Color: &red, Opacity: &over}, def)
	if err != nil {
		t.Fatalf("measure failed: %v", err)
	}
	if p.Style.Font != "Bold" || p.Style.Size != 20 || !p.Style.Color.Equal(red) || p.Style.Opacity != 1 {
		t.Fatalf("fragment overrides not applied: %+v", p.Style)
	}
}

func TestMeasureErrors(t *testing.T) {
	if _, err := Measure(nil, frag("a", 12), Style{}); !errors.Is(err, ErrNoMeasurer) {
		t.Fatalf("expected ErrNoMeasurer, got %v", err)
	}
	_, err := MeasureAll(failingMeasurer{}, []Fragment{frag("", 12), frag("a", 12)}, Style{})
	if !errors.Is(err, errMeasure) {
		t.Fatalf("expected measurer error to propagate, got %v", err)
	}
}

func TestMergeRuns(t *testing.T) {
	st := Style{Font: "Body", Size: 12, Opacity: 1}
	other := st
	other.Color = red
	pieces := []Piece{
		{Text: "a", Style: st, Width: 1},
		{Text: "b", Style: st, Width: 2},
		{Text: "c", Style: other, Width: 3},
		{Text: "d", Style: st, Width: 4},
	}
	runs := MergeRuns(pieces)
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %+v", runs)
	}
	if runs[0].Text != "ab" || runs[0].Width != 3 {
		t.Fatalf("unexpected first run: %+v", runs[0])
	}
	if runs[2].Text != "d" {
		t.Fatalf("non-adjacent equal styles must not merge: %+v", runs)
	}
	if MergeRuns(nil) != nil {
		t.Fatalf("empty input should merge to nil")
	}
}

func TestBreakLinesWrapOffIsAdditive(t *testing.T) {
	frags := []Fragment{frag("hello ", 10), frag("wide ", 20), frag("world", 10)}
	lines := breakAll(t, frags, 10, false)
	if len(lines) != 1 {
		t.Fatalf("wrap off must keep a single line, got %d", len(lines))
	}
	want := 0.0
	for _, f := range frags {
		w, _ := fixedMeasurer{}.TextWidth("", f.Text, f.Size)
		want += w
	}
	if !near(lines[0].Width, want) {
		t.Fatalf("expected width %g, got %g", want, lines[0].Width)
	}
	if lines[0].MaxSize != 20 {
		t.Fatalf("expected max size 20, got %g", lines[0].MaxSize)
	}
}

func TestBreakLinesForcedBreaks(t *testing.T) {
	frags := []Fragment{
		frag("one", 10),
		{Text: "two", Size: 10, Break: true},
		{Text: "", Size: 10, Break: true},
		{Text: "three", Size: 10, Break: true},
	}
	lines := breakAll(t, frags, 1000, false)
	got := lineTexts(lines)
	if strings.Join(got, "|") != "one|two|three" {
		t.Fatalf("unexpected lines %q", got)
	}
	if lines[0].Forced || !lines[1].Forced || !lines[2].Forced {
		t.Fatalf("unexpected forced flags: %+v", lines)
	}
	for i, ln := range lines {
		if !ln.ParagraphEnd {
			t.Fatalf("line %d precedes a forced break and must end its paragraph", i)
		}
	}
}

func TestBreakLinesKeepsEmptyPieces(t *testing.T) {
	lines := breakAll(t, []Fragment{frag("", 10), frag("ab", 10)}, 100, true)
	if len(lines) != 1 || len(lines[0].Pieces) != 2 {
		t.Fatalf("empty piece should be carried into the next line: %+v", lines)
	}
	if lines := breakAll(t, []Fragment{frag("", 10)}, 100, true); len(lines) != 0 {
		t.Fatalf("a line of empty pieces must not be emitted: %+v", lines)
	}
}

func TestBreakLinesWrapsAtFragments(t *testing.T) {
	// 每个字符 5 个单位，宽度 50
	frags := []Fragment{frag("aaaa ", 10), frag("bbbb ", 10), frag("cccc", 10)}
	lines := breakAll(t, frags, 50, true)
	got := lineTexts(lines)
	if strings.Join(got, "|") != "aaaa bbbb |cccc" {
		t.Fatalf("unexpected lines %q", got)
	}
	if lines[0].ParagraphEnd || !lines[1].ParagraphEnd {
		t.Fatalf("only the last line ends the paragraph: %+v", lines)
	}
}

func TestBreakLinesSplitsOversizeFragment(t *testing.T) {
	lines := breakAll(t, []Fragment{frag("aaaa bbbb cccc", 10)}, 45, true)
	got := lineTexts(lines)
	if strings.Join(got, "|") != "aaaa bbbb |cccc" {
		t.Fatalf("unexpected lines %q", got)
	}
	for _, ln := range lines {
		if ln.Width > 45 {
			t.Fatalf("line exceeds width: %+v", ln)
		}
	}
}

func TestBreakLinesSplitKeepsSpacesAtLineEnd(t *testing.T) {
	lines := breakAll(t, []Fragment{frag("aaaa bbbb cccc", 10)}, 22, true)
	got := lineTexts(lines)
	if strings.Join(got, "|") != "aaaa |bbbb |cccc" {
		t.Fatalf("spaces must not form their own lines: %q", got)
	}
	for _, ln := range lines {
		if isBlank(ln.Pieces[0].Text) {
			t.Fatalf("line starts with whitespace: %q", ln.Text())
		}
		if ln.Width != 20 {
			t.Fatalf("trailing space should not count towards the width: %+v", ln)
		}
	}

	comp, err := ComposeArea(fixedMeasurer{}, 100, Box{Width: 22, Height: 36, Wrap: true}, []Fragment{frag("aaaa bbbb cccc", 10)})
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if comp.Report.Overflowed || len(comp.Lines) != 3 {
		t.Fatalf("three lines fit exactly: %+v", comp.Report)
	}
}

func TestBreakLinesOversizeFragmentStandsAlone(t *testing.T) {
	lines := breakAll(t, []Fragment{frag("aaaa bbbb", 10), frag("x", 10)}, 30, true)
	got := lineTexts(lines)
	if strings.Join(got, "|") != "aaaa |bbbb|x" {
		t.Fatalf("following fragment must start a new line: %q", got)
	}
}

func TestSplitPieceFollowsSplitWords(t *testing.T) {
	f := colored(" one  two ", 10, red)
	p, err := Measure(fixedMeasurer{}, f, Box{}.withDefaults().defaults())
	if err != nil {
		t.Fatalf("measure failed: %v", err)
	}
	pieces, err := splitPiece(fixedMeasurer{}, p)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	words := SplitWords(f)
	if len(pieces) != len(words) {
		t.Fatalf("expected %d pieces, got %d", len(words), len(pieces))
	}
	for i := range words {
		want, _ := fixedMeasurer{}.TextWidth("", words[i].Text, 10)
		if pieces[i].Text != words[i].Text || pieces[i].Width != want || !pieces[i].Style.Equal(p.Style) {
			t.Fatalf("piece %d mismatch: %+v", i, pieces[i])
		}
	}
}

func TestBreakLinesLongWordStaysWhole(t *testing.T) {
	lines := breakAll(t, []Fragment{frag("abcdefghij", 10)}, 20, true)
	if len(lines) != 1 || lines[0].Text() != "abcdefghij" || lines[0].Width != 50 {
		t.Fatalf("a single word is never split: %+v", lines)
	}
}

func TestBreakLinesNoTextLoss(t *testing.T) {
	frags := []Fragment{
		frag("Lorem ipsum dolor sit amet, ", 10),
		colored("consectetur", 14, red),
		frag(" adipiscing elit", 10),
		{Text: "sed do eiusmod tempor", Size: 8, Break: true},
		frag("  incididunt  ", 12),
	}
	var want strings.Builder
	for _, f := range frags {
		want.WriteString(f.Text)
	}
	for _, width := range []float64{0, 10, 37, 80, 1000} {
		lines := breakAll(t, frags, width, true)
		if got := strings.Join(lineTexts(lines), ""); got != want.String() {
			t.Fatalf("width %g: text lost: %q", width, got)
		}
	}
}

func TestComposeAreaSharedBaseline(t *testing.T) {
	box := Box{Width: 500, Height: 100, Wrap: true}
	comp, err := ComposeArea(fixedMeasurer{}, 200, box, []Fragment{frag("Big", 24), frag("small", 12)})
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	runs := comp.Lines[0].Runs
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %+v", runs)
	}
	if runs[0].Y != 176 || runs[1].Y != 176 {
		t.Fatalf("mixed sizes must share a baseline at 176: %g / %g", runs[0].Y, runs[1].Y)
	}
	if runs[1].X != 36 {
		t.Fatalf("second run should follow the first: x=%g", runs[1].X)
	}
	if !near(comp.Lines[0].Height, 28.8) {
		t.Fatalf("line height should follow the largest size: %g", comp.Lines[0].Height)
	}
}

func TestComposeAreaJustifyFragments(t *testing.T) {
	box := Box{X: 10, Width: 100, Height: 100, Wrap: true, Align: AlignJustifyFragment}
	frags := []Fragment{colored("aaaa", 10, red), colored("bbbb", 10, blue), colored(strings.Repeat("c", 14), 10, red)}
	comp, err := ComposeArea(fixedMeasurer{}, 200, box, frags)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if len(comp.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(comp.Lines))
	}
	first := comp.Lines[0]
	if first.Gap != 60 || first.Runs[0].X != 10 || first.Runs[1].X != 90 {
		t.Fatalf("unexpected justified line: %+v", first)
	}
	last := comp.Lines[1]
	if last.Gap != 0 || last.Runs[0].X != 10 {
		t.Fatalf("last line must be left aligned: %+v", last)
	}
}

func TestComposeJustifyFallbackSingleRun(t *testing.T) {
	box := Box{X: 5, Width: 100, Height: 20, Align: AlignJustifyFragment}
	comp, err := ComposeLine(fixedMeasurer{}, 100, box, []Fragment{frag("alone", 10)})
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	ln := comp.Lines[0]
	if len(ln.Runs) != 1 || ln.Runs[0].X != 5 || ln.Gap != 0 {
		t.Fatalf("a single run falls back to left alignment: %+v", ln)
	}
}

func TestComposeLineJustifyWords(t *testing.T) {
	box := Box{Width: 100, Height: 20, Align: AlignJustifyWord}
	comp, err := ComposeLine(fixedMeasurer{}, 100, box, []Fragment{frag("ab cd ", 10), frag("ef", 10)})
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	runs := comp.Lines[0].Runs
	if len(runs) != 3 {
		t.Fatalf("expected 3 words, got %+v", runs)
	}
	for i, want := range []float64{0, 45, 90} {
		if !near(runs[i].X, want) {
			t.Fatalf("word %d: expected x=%g, got %g", i, want, runs[i].X)
		}
	}
}

func TestComposeAlignAndVAlign(t *testing.T) {
	cases := []struct {
		align  Align
		valign VAlign
		x, y   float64
	}{
		{AlignLeft, VAlignTop, 0, 190},
		{AlignCenter, VAlignMiddle, 40, 146},
		{AlignRight, VAlignBottom, 80, 102},
	}
	for _, tc := range cases {
		// 页面高 200，文本框占据上半部分：frame.Top()=200，frame.Bottom=100
		box := Box{Width: 100, Height: 100, Align: tc.align, VAlign: tc.valign, Wrap: true}
		comp, err := ComposeArea(fixedMeasurer{}, 200, box, []Fragment{frag("abcd", 10)})
		if err != nil {
			t.Fatalf("compose failed: %v", err)
		}
		run := comp.Lines[0].Runs[0]
		if !near(run.X, tc.x) || !near(run.Y, tc.y) {
			t.Fatalf("%s/%s: expected (%g,%g), got (%g,%g)", tc.align, tc.valign, tc.x, tc.y, run.X, run.Y)
		}
	}
}

func TestOverflowPrecedence(t *testing.T) {
	box := Box{Width: 200, Height: 30}
	rep := ClassifyLine(250, 20, box)
	if !rep.Overflowed || !rep.OverflowX || rep.OverflowY {
		t.Fatalf("expected X only: %+v", rep)
	}
	if rep.Message != "Text overflows X (width)" {
		t.Fatalf("unexpected message %q", rep.Message)
	}
	if got := ClassifyLine(250, 40, box).Message; got != "Text overflows both X (width) and Y (height)" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := ClassifyLine(100, 40, box).Message; got != "Text overflows Y (height)" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := ClassifyLine(200, 30, box); got.Overflowed || got.Message != "Text fits within bounds" {
		t.Fatalf("exact fit must not overflow: %+v", got)
	}
}

func fiveLines() []Line {
	lines := make([]Line, 5)
	for i := range lines {
		lines[i] = Line{Index: i, Pieces: []Piece{{Text: "x"}}, Width: 10, Height: 20}
	}
	return lines
}

func TestClassifyAreaClip(t *testing.T) {
	render, rep := ClassifyArea(fiveLines(), Box{Width: 100, Height: 90, Overflow: OverflowClip})
	if len(render) != 4 || rep.RenderedLines != 4 || rep.TotalLines != 5 {
		t.Fatalf("expected 4 of 5 lines rendered: %+v", rep)
	}
	if idx := rep.OverflowedIndices(); len(idx) != 1 || idx[0] != 4 {
		t.Fatalf("expected overflowed [4], got %v", idx)
	}
	if !rep.OverflowY || rep.OverflowX || rep.ContentHeight != 80 {
		t.Fatalf("unexpected clip report: %+v", rep)
	}
}

func TestClassifyAreaReportAndHide(t *testing.T) {
	render, rep := ClassifyArea(fiveLines(), Box{Width: 100, Height: 90})
	if len(render) != 5 || !rep.OverflowY || rep.RenderedLines != 5 {
		t.Fatalf("report renders everything: %+v", rep)
	}
	if len(rep.OverflowedLines) != 1 {
		t.Fatalf("report still lists the overflowed lines: %+v", rep)
	}

	render, rep = ClassifyArea(fiveLines(), Box{Width: 100, Height: 90, Overflow: OverflowHide})
	if render != nil || rep.RenderedLines != 0 || !rep.Overflowed {
		t.Fatalf("hide renders nothing on overflow: %+v", rep)
	}

	render, rep = ClassifyArea(fiveLines(), Box{Width: 100, Height: 100, Overflow: OverflowHide})
	if len(render) != 5 || rep.Overflowed {
		t.Fatalf("hide renders everything when it fits: %+v", rep)
	}
}

func TestComposeDegenerateInputs(t *testing.T) {
	comp, err := ComposeArea(fixedMeasurer{}, 100, Box{Width: 100, Height: 100}, nil)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if len(comp.Lines) != 0 || comp.Report.Overflowed {
		t.Fatalf("no fragments yields no lines: %+v", comp)
	}

	comp, err = ComposeArea(fixedMeasurer{}, 100, Box{Width: 0, Height: 1000, Wrap: true}, []Fragment{frag("ab cd", 10)})
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if !comp.Report.OverflowX || len(comp.Lines) == 0 {
		t.Fatalf("zero width must overflow X: %+v", comp.Report)
	}

	if _, err := ComposeArea(nil, 100, Box{}, nil); !errors.Is(err, ErrNoMeasurer) {
		t.Fatalf("expected ErrNoMeasurer, got %v", err)
	}
}

func TestComposeLineIsIdempotent(t *testing.T) {
	box := Box{Width: 80, Height: 20, Align: AlignCenter}
	frags := []Fragment{frag("abc ", 10), {Text: "def", Size: 10, Break: true}}
	a, err := ComposeLine(fixedMeasurer{}, 100, box, frags)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	b, _ := ComposeLine(fixedMeasurer{}, 100, box, frags)
	if len(a.Lines) != 1 || len(a.Lines[0].Runs) != 1 || a.Lines[0].Runs[0].Text != "abc def" {
		t.Fatalf("single line ignores breaks and merges equal styles: %+v", a.Lines)
	}
	if a.Lines[0].Runs[0] != b.Lines[0].Runs[0] || a.Report.Message != b.Report.Message {
		t.Fatalf("repeated layout must be identical")
	}
	if len(a.Report.Parts) != 2 || a.Report.LineWidth != 35 {
		t.Fatalf("unexpected single-line report: %+v", a.Report)
	}
}

func TestComposeLineHide(t *testing.T) {
	box := Box{Width: 10, Height: 20, Overflow: OverflowHide}
	comp, err := ComposeLine(fixedMeasurer{}, 100, box, []Fragment{frag("too long", 10)})
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if !comp.Hidden || len(comp.Lines) != 0 || comp.Report.RenderedLines != 0 {
		t.Fatalf("hidden line must not be positioned: %+v", comp)
	}
}

func TestComposeAreaJustifyWordsLastLineNatural(t *testing.T) {
	box := Box{Width: 35, Height: 100, Wrap: true, Align: AlignJustifyWord}
	comp, err := ComposeArea(fixedMeasurer{}, 100, box, []Fragment{frag("aa bb ", 10), frag("cc dd ", 10), frag("ee", 10)})
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if len(comp.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(comp.Lines))
	}
	for i, want := range []float64{15, 15, 0} {
		if ln := comp.Lines[i]; ln.Gap != want {
			t.Fatalf("line %d: expected gap %g, got %g", i, want, ln.Gap)
		}
	}
	if runs := comp.Lines[0].Runs; len(runs) != 2 || runs[1].X != 25 {
		t.Fatalf("unexpected justified words: %+v", runs)
	}
	if last := comp.Lines[2].Runs; len(last) != 1 || last[0].X != 0 {
		t.Fatalf("last line must keep natural spacing: %+v", last)
	}
}

func TestComposeVAlignUsesRenderedLines(t *testing.T) {
	frags := []Fragment{frag("a", 10), {Text: "b", Size: 10, Break: true}, {Text: "c", Size: 10, Break: true}}
	cases := []struct {
		valign  VAlign
		cursors []float64
	}{
		{VAlignMiddle, []float64{97, 85}},
		{VAlignBottom, []float64{94, 82}},
	}
	for _, tc := range cases {
		box := Box{Width: 100, Height: 30, VAlign: tc.valign, Overflow: OverflowClip}
		comp, err := ComposeArea(fixedMeasurer{}, 100, box, frags)
		if err != nil {
			t.Fatalf("compose failed: %v", err)
		}
		if len(comp.Lines) != 2 || comp.Report.RenderedLines != 2 {
			t.Fatalf("%s: expected 2 rendered lines, got %+v", tc.valign, comp.Report)
		}
		for i, want := range tc.cursors {
			if !near(comp.Lines[i].Cursor, want) {
				t.Fatalf("%s line %d: expected cursor %g, got %g", tc.valign, i, want, comp.Lines[i].Cursor)
			}
		}
	}
}

func TestOverflowPolicyDefaults(t *testing.T) {
	if got := (Box{}).withDefaults().Overflow; got != OverflowVisible {
		t.Fatalf("expected %q by default, got %q", OverflowVisible, got)
	}
	for in, want := range map[string]OverflowPolicy{"": OverflowVisible, "visible": OverflowVisible, "clip": OverflowClip, "hidden": OverflowHide} {
		if got, ok := ParseOverflow(in); !ok || got != want {
			t.Fatalf("%q: expected %q, got %q", in, want, got)
		}
	}
	if _, ok := ParseOverflow("scroll"); ok {
		t.Fatalf("unknown policy must be rejected")
	}
}
