package shape

import (
	"math"
	"testing"

	"github.com/ByLCY/textbox/layout"
)

func TestKappa(t *testing.T) {
	if want := 4.0 / 3.0 * (math.Sqrt2 - 1); math.Abs(Kappa-want) > 1e-15 {
		t.Fatalf("unexpected kappa %g, want %g", Kappa, want)
	}
}

func kinds(ops []Op) string {
	s := ""
	for _, op := range ops {
		s += op.Kind.String()
	}
	return s
}

func TestRectangleOps(t *testing.T) {
	p := &Path{}
	p.Rectangle(10, 20, 30, 40)
	ops := p.Ops()
	if kinds(ops) != "mlllh" {
		t.Fatalf("unexpected ops %q", kinds(ops))
	}
	if ops[2].X != 40 || ops[2].Y != 60 {
		t.Fatalf("unexpected far corner: %+v", ops[2])
	}
}

func TestRoundedRectangle(t *testing.T) {
	p := &Path{}
	p.RoundedRectangle(0, 0, 100, 20, 50)
	ops := p.Ops()
	if kinds(ops) != "mlclclclch" {
		t.Fatalf("unexpected ops %q", kinds(ops))
	}
	// 半径被限制为短边的一半
	if ops[0].X != 10 || ops[1].X != 90 {
		t.Fatalf("radius not clamped: %+v", ops[:2])
	}
	if c := ops[2]; c.X1 != 90+10*Kappa || c.X != 100 || c.Y != 10 {
		t.Fatalf("unexpected corner curve: %+v", c)
	}

	flat := &Path{}
	flat.RoundedRectangle(0, 0, 100, 20, 0)
	if kinds(flat.Ops()) != "mlllh" {
		t.Fatalf("zero radius should fall back to a rectangle")
	}
}

func TestEllipseOps(t *testing.T) {
	p := &Path{}
	p.Ellipse(50, 50, 20, 10)
	ops := p.Ops()
	if kinds(ops) != "mcccch" {
		t.Fatalf("unexpected ops %q", kinds(ops))
	}
	if ops[0].X != 70 || ops[0].Y != 50 {
		t.Fatalf("ellipse should start at the right extreme: %+v", ops[0])
	}
	top := ops[1]
	if top.X != 50 || top.Y != 60 || top.X2 != 50+20*Kappa {
		t.Fatalf("unexpected first quadrant: %+v", top)
	}
	if last := ops[4]; last.X != 70 || last.Y != 50 {
		t.Fatalf("ellipse must close at the start point: %+v", last)
	}
}

func TestOpsIsCopy(t *testing.T) {
	p := &Path{}
	p.MoveTo(1, 1)
	ops := p.Ops()
	ops[0].X = 99
	if p.Ops()[0].X != 1 {
		t.Fatalf("Ops must return a copy")
	}
	var nilPath *Path
	if !nilPath.Empty() || !(&Path{}).Empty() || p.Empty() {
		t.Fatalf("unexpected Empty results")
	}
}

func TestShapesInBoxFlipCoordinates(t *testing.T) {
	box := layout.Box{X: 10, Y: 20, Width: 40, Height: 30}
	r := RectIn(box, 100, 0, Style{})
	if first := r.Path.Ops()[0]; first.X != 10 || first.Y != 50 {
		t.Fatalf("rect should start at bottom-left (10,50): %+v", first)
	}
	e := EllipseIn(box, 100, Style{})
	if first := e.Path.Ops()[0]; first.X != 50 || first.Y != 65 {
		t.Fatalf("ellipse should start at (50,65): %+v", first)
	}
}

func TestStyleAlpha(t *testing.T) {
	if (Style{}).Alpha() != 1 {
		t.Fatalf("unset opacity should be opaque")
	}
	for _, tc := range []struct{ in, want float64 }{{0.3, 0.3}, {-1, 0}, {2, 1}} {
		v := tc.in
		if got := (Style{Opacity: &v}).Alpha(); got != tc.want {
			t.Fatalf("opacity %g: expected %g, got %g", tc.in, tc.want, got)
		}
	}
}

func TestDash(t *testing.T) {
	if NewDash() != nil || NewDash(0, 0) != nil {
		t.Fatalf("all-zero dash should be solid")
	}
	d := NewDash(-3, 1, 2)
	if d.Array[0] != 3 {
		t.Fatalf("negative lengths should be normalized: %v", d.Array)
	}
	if got := d.Pattern(); len(got) != 6 || got[3] != 3 {
		t.Fatalf("odd pattern should repeat once: %v", got)
	}
	if d.PatternLength() != 12 {
		t.Fatalf("unexpected pattern length %g", d.PatternLength())
	}
	even := NewDash(4, 2).WithOffset(1)
	if len(even.Pattern()) != 2 || even.Offset != 1 {
		t.Fatalf("unexpected even dash: %+v", even)
	}
	var none *Dash
	if none.WithOffset(2) != nil || none.Pattern() != nil || none.PatternLength() != 0 {
		t.Fatalf("nil dash must behave as solid")
	}
}
