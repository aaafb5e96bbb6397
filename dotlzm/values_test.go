package dotlzm

import "testing"

func TestParseBeatAtom(t *testing.T) {
	b, err := parseBeatAtom("2")
	if err != nil || b.Value != 2 || b.BarsAhead != 0 {
		t.Fatalf("got %+v, %v", b, err)
	}
	b, err = parseBeatAtom("3.5,8")
	if err != nil || b.Value != 3.5 || b.BarsAhead != 8 {
		t.Fatalf("got %+v, %v", b, err)
	}
	if _, err = parseBeatAtom("x"); err == nil {
		t.Fatal("want error for non-numeric beat")
	}
	if _, err = parseBeatAtom("1,-2"); err == nil {
		t.Fatal("want error for negative bar skip")
	}
}

func TestParseBeatExpr(t *testing.T) {
	bs, err := parseBeatExpr("2;3.5,8")
	if err != nil || len(bs) != 2 {
		t.Fatalf("got %+v, %v", bs, err)
	}
	if bs[0] != (BeatPosition{Value: 2}) || bs[1] != (BeatPosition{Value: 3.5, BarsAhead: 8}) {
		t.Fatalf("got %+v", bs)
	}
	if _, err = parseBeatExpr("1;2;3"); err == nil {
		t.Fatal("want error for three beats")
	}
}

func TestParseVec3Shorthand(t *testing.T) {
	v, err := parseVec3("1.5")
	if err != nil || v != (Vec3{X: 1.5}) {
		t.Fatalf("got %+v, %v", v, err)
	}
	v, err = parseVec3("1,2")
	if err != nil || v != (Vec3{X: 1, Z: 2}) {
		t.Fatalf("two components read as (x, 0, z): got %+v, %v", v, err)
	}
	v, err = parseVec3("1,2,3")
	if err != nil || v != (Vec3{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("got %+v, %v", v, err)
	}
	if _, err = parseVec3("1,2,3,4"); err == nil {
		t.Fatal("want error for four components")
	}
}

func TestParseColor(t *testing.T) {
	c, err := parseColor("FF8000")
	if err != nil || c != (RGBA8{0xFF, 0x80, 0x00, 0xFF}) {
		t.Fatalf("got %+v, %v", c, err)
	}
	if _, err = parseColor("FFF"); err == nil {
		t.Fatal("want error for short color")
	}
	if _, err = parseColor("GG0000"); err == nil {
		t.Fatal("want error for non-hex color")
	}
}

func TestParseEdgeBlock(t *testing.T) {
	left, right, err := parseEdgeBlock("0.5,0:1.5,2;m")
	if err != nil {
		t.Fatal(err)
	}
	if left.kind != EdgeExplicit || right.kind != EdgeMirror {
		t.Fatalf("got kinds %v, %v", left.kind, right.kind)
	}
	if left.p0.x != 0.5 || left.p1.x != 1.5 || left.p1.beat.Value != 2 {
		t.Fatalf("got %+v", left)
	}

	// Bar-skip suffix inside a control point beat.
	left, _, err = parseEdgeBlock("1,2,3:2,0,1;")
	if err != nil {
		t.Fatal(err)
	}
	if left.p0.beat != (BeatPosition{Value: 2, BarsAhead: 3}) {
		t.Fatalf("got %+v", left.p0.beat)
	}
	if left.p1.beat != (BeatPosition{Value: 0, BarsAhead: 1}) {
		t.Fatalf("got %+v", left.p1.beat)
	}

	if _, _, err = parseEdgeBlock("m;m"); err == nil {
		t.Fatal("want error for mutual mirroring")
	}
}

func TestParseAnimationValue(t *testing.T) {
	def, err := parseAnimationValue("rise", "T,450,{0,0,0;0,2,0}")
	if err != nil {
		t.Fatal(err)
	}
	if def.Type != AnimTranslate || def.DurationMs != 450 {
		t.Fatalf("got %+v", def)
	}
	if def.End != (Vec3{Y: 2}) {
		t.Fatalf("got end %+v", def.End)
	}

	def, err = parseAnimationValue("spin", "R,900,{0,0,90;1,0,0}")
	if err != nil {
		t.Fatal(err)
	}
	if def.Type != AnimRotate || def.AxisRotation != (Vec3{Z: 90}) || def.Center != (Vec3{X: 1}) {
		t.Fatalf("got %+v", def)
	}

	if _, err = parseAnimationValue("bad", "X,1,{0;0}"); err == nil {
		t.Fatal("want error for unknown animation type")
	}
	if _, err = parseAnimationValue("bad", "T,1,{0}"); err == nil {
		t.Fatal("want error for one-vector block")
	}
}

func TestParseTimeSignatureValue(t *testing.T) {
	ts, err := parseTimeSignatureValue("3/8")
	if err != nil || ts != (TimeSignature{NumBeats: 3, NoteValue: 8}) {
		t.Fatalf("got %+v, %v", ts, err)
	}
	if _, err = parseTimeSignatureValue("4"); err == nil {
		t.Fatal("want error for missing denominator")
	}
	if _, err = parseTimeSignatureValue("0/4"); err == nil {
		t.Fatal("want error for zero numerator")
	}
}

func TestClassifyLines(t *testing.T) {
	if cl := classify(1, "<header>"); cl.kind != lineSection || cl.section != "header" {
		t.Fatalf("got %+v", cl)
	}
	if cl := classify(2, "  -- // bar"); cl.kind != lineBarSep {
		t.Fatalf("got %+v", cl)
	}
	if cl := classify(3, "[B1]"); cl.kind != lineSubHeading || cl.sub != "B1" {
		t.Fatalf("got %+v", cl)
	}
	if cl := classify(4, "tempo=150"); cl.kind != lineKeyValue || cl.key != "tempo" || cl.value != "150" {
		t.Fatalf("got %+v", cl)
	}

	cl := classify(5, "[HB2] (2;3.5,8) |0;1| {0.5,0:1.5,2}")
	if cl.kind != lineBody {
		t.Fatalf("got %+v", cl)
	}
	if cl.body.tag != "HB2" || cl.body.rawBeat != "2;3.5,8" || cl.body.rawPos != "0;1" {
		t.Fatalf("got %+v", cl.body)
	}
	if !cl.body.hasOptions || cl.body.rawOpts != "0.5,0:1.5,2" {
		t.Fatalf("got %+v", cl.body)
	}

	if cl := classify(6, "[B1] (2) |1|"); cl.kind != lineBody || cl.body.hasOptions {
		t.Fatalf("options must default to empty: %+v", cl)
	}
	if cl := classify(7, "??"); cl.kind != lineMalformed {
		t.Fatalf("got %+v", cl)
	}
	if cl := classify(8, "// only a comment"); cl.kind != lineBlank {
		t.Fatalf("got %+v", cl)
	}
}
