package dotlzm

import (
	"math"
	"testing"
)

func TestStraightEdgePoints(t *testing.T) {
	pts := straightEdgePoints(EdgePoint{X: 1, TimeMs: 0}, EdgePoint{X: 3, TimeMs: 2000})
	if len(pts) != 2 || pts[0] != (EdgePoint{X: 1}) || pts[1] != (EdgePoint{X: 3, TimeMs: 2000}) {
		t.Fatalf("got %+v", pts)
	}
}

func TestCubicEdgePointsAnchors(t *testing.T) {
	start := EdgePoint{X: 0, TimeMs: 0}
	end := EdgePoint{X: 2, TimeMs: 2000}
	pts := cubicEdgePoints(start, EdgePoint{X: 3, TimeMs: 500}, EdgePoint{X: -1, TimeMs: 1500}, end)
	if len(pts) < 2 {
		t.Fatalf("got %d points", len(pts))
	}
	if pts[0] != start || pts[len(pts)-1] != end {
		t.Fatalf("anchors must be exact: %+v ... %+v", pts[0], pts[len(pts)-1])
	}
	// Time along a bezier whose control times are ordered is monotonic.
	for i := 1; i < len(pts); i++ {
		if pts[i].TimeMs < pts[i-1].TimeMs {
			t.Fatalf("time went backwards at %d: %+v", i, pts)
		}
	}
}

func TestCubicEdgeDegenerateIsLine(t *testing.T) {
	// Control points on the chord keep every sample on the chord.
	start := EdgePoint{X: 0, TimeMs: 0}
	end := EdgePoint{X: 3, TimeMs: 3000}
	pts := cubicEdgePoints(start, EdgePoint{X: 1, TimeMs: 1000}, EdgePoint{X: 2, TimeMs: 2000}, end)
	for _, p := range pts {
		want := p.TimeMs / 1000.0
		if math.Abs(p.X-want) > 1e-6 {
			t.Fatalf("point off the chord: %+v", p)
		}
	}
}

func TestEdgeXAt(t *testing.T) {
	pts := []EdgePoint{{X: 0, TimeMs: 0}, {X: 4, TimeMs: 1000}}
	if got := EdgeXAt(pts, 500); !almostEqMs(got, 2) {
		t.Fatalf("got %v", got)
	}
	if got := EdgeXAt(pts, -10); got != 0 {
		t.Fatalf("got %v", got)
	}
	if got := EdgeXAt(pts, 5000); got != 4 {
		t.Fatalf("got %v", got)
	}
}

func TestMirrorEdgeCopiesSibling(t *testing.T) {
	c := CompileString(`
<header>
default_tempo=120
default_time_signature=4/4
<chart_body>
[PC] (0;4) |-1;1;-1;1| {0.5,1:1.5,3;m}
--
`)
	if c.Failed() {
		t.Fatalf("diagnostics: %v", c.Diagnostics)
	}
	pc := c.Objects[0].(PlatformCurved)
	if pc.LeftEdge.Kind != EdgeExplicit || pc.RightEdge.Kind != EdgeMirror {
		t.Fatalf("got kinds %v, %v", pc.LeftEdge.Kind, pc.RightEdge.Kind)
	}
	if pc.RightEdge.P0 != pc.LeftEdge.P0 || pc.RightEdge.P1 != pc.LeftEdge.P1 {
		t.Fatalf("mirror control points must match: %+v vs %+v", pc.RightEdge, pc.LeftEdge)
	}
	if len(pc.RightEdge.Points) != len(pc.LeftEdge.Points) {
		t.Fatalf("got %d vs %d points", len(pc.RightEdge.Points), len(pc.LeftEdge.Points))
	}
	for i := range pc.LeftEdge.Points {
		if pc.RightEdge.Points[i] != pc.LeftEdge.Points[i] {
			t.Fatalf("point %d differs", i)
		}
	}
}

func TestMutualMirrorIsFatalForObject(t *testing.T) {
	c := CompileString(`
<header>
default_tempo=120
default_time_signature=4/4
<chart_body>
[PC] (0;4) |-1;1;-1;1| {m;m}
[B1] (0) |0|
--
`)
	if !c.Failed() {
		t.Fatal("want a fatal diagnostic for the mutual mirror")
	}
	if len(c.Objects) != 1 || c.Objects[0].Kind() != KindNoteBasic {
		t.Fatalf("fault isolation: only the curved platform drops, got %+v", c.Objects)
	}
}

func TestHoldSingleEdgeImpliesParallel(t *testing.T) {
	c := CompileString(`
<header>
default_tempo=120
default_time_signature=4/4
<chart_body>
[HB1] (0;4) |0;2| {0.5,1:1.5,3}
--
`)
	if c.Failed() {
		t.Fatalf("diagnostics: %v", c.Diagnostics)
	}
	h := c.Objects[0].(HoldBasic)
	if h.LeftEdge.Kind != EdgeExplicit || h.RightEdge.Kind != EdgeMirror {
		t.Fatalf("got kinds %v, %v", h.LeftEdge.Kind, h.RightEdge.Kind)
	}
	for i := range h.LeftEdge.Points {
		if h.RightEdge.Points[i] != h.LeftEdge.Points[i] {
			t.Fatalf("hold edges must stay parallel")
		}
	}
}

func TestHoldSecondExplicitEdgeIsFatal(t *testing.T) {
	c := CompileString(`
<header>
default_tempo=120
default_time_signature=4/4
<chart_body>
[HB1] (0;4) |0;2| {0.5,1:1.5,3;-3,2:5,1}
[B1] (0) |0|
--
`)
	if !c.Failed() {
		t.Fatal("want a fatal diagnostic for diverging hold edges")
	}
	for _, o := range c.Objects {
		if o.Kind() == KindHoldBasic {
			t.Fatal("the hold must be dropped")
		}
	}
	if len(c.Objects) != 1 || c.Objects[0].Kind() != KindNoteBasic {
		t.Fatalf("fault isolation: only the hold drops, got %+v", c.Objects)
	}
}

func TestHoldExplicitLeftEmptyRightMirrors(t *testing.T) {
	c := CompileString(`
<header>
default_tempo=120
default_time_signature=4/4
<chart_body>
[HB1] (0;4) |0;2| {0.5,1:1.5,3;}
--
`)
	if c.Failed() {
		t.Fatalf("diagnostics: %v", c.Diagnostics)
	}
	h := c.Objects[0].(HoldBasic)
	if h.LeftEdge.Kind != EdgeExplicit || h.RightEdge.Kind != EdgeMirror {
		t.Fatalf("got kinds %v, %v", h.LeftEdge.Kind, h.RightEdge.Kind)
	}
	if len(h.RightEdge.Points) != len(h.LeftEdge.Points) {
		t.Fatalf("got %d vs %d points", len(h.RightEdge.Points), len(h.LeftEdge.Points))
	}
	for i := range h.LeftEdge.Points {
		if h.RightEdge.Points[i] != h.LeftEdge.Points[i] {
			t.Fatalf("hold edges must stay parallel")
		}
	}
}

func TestEdgeControlPointBarSkip(t *testing.T) {
	c := CompileString(`
<header>
default_tempo=120
default_time_signature=4/4
<chart_body>
[PC] (0;0,1) |-1;1;-1;1| {0.5,2,1:1.5,3,1;}
--
--
`)
	if c.Failed() {
		t.Fatalf("diagnostics: %v", c.Diagnostics)
	}
	pc := c.Objects[0].(PlatformCurved)
	// Both control points resolve against measure 1 (2000ms..4000ms).
	if !almostEqMs(pc.LeftEdge.P0.TimeMs, 2000+(2.0/4.0)*2000) {
		t.Fatalf("got %v", pc.LeftEdge.P0.TimeMs)
	}
	if !almostEqMs(pc.LeftEdge.P1.TimeMs, 2000+(3.0/4.0)*2000) {
		t.Fatalf("got %v", pc.LeftEdge.P1.TimeMs)
	}
}
