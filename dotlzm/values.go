package dotlzm

import (
	"fmt"
	"strconv"
	"strings"
)

// ---------- Primitive sub-grammar parsers ----------

// parseBeatAtom parses "v" or "v,k" where k skips ahead k whole bars.
func parseBeatAtom(s string) (BeatPosition, error) {
	parts := strings.Split(s, ",")
	if len(parts) > 2 {
		return BeatPosition{}, fmt.Errorf("beat %q: too many fields", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return BeatPosition{}, fmt.Errorf("beat %q: %w", s, err)
	}
	b := BeatPosition{Value: v}
	if len(parts) == 2 {
		k, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return BeatPosition{}, fmt.Errorf("beat %q bar skip: %w", s, err)
		}
		if k < 0 {
			return BeatPosition{}, fmt.Errorf("beat %q: negative bar skip", s)
		}
		b.BarsAhead = k
	}
	return b, nil
}

// parseBeatExpr parses the "(...)" content: one beat, or two separated by ';'.
func parseBeatExpr(s string) ([]BeatPosition, error) {
	parts := strings.Split(s, ";")
	if len(parts) > 2 {
		return nil, fmt.Errorf("beat expression %q: more than two beats", s)
	}
	out := make([]BeatPosition, 0, len(parts))
	for _, p := range parts {
		b, err := parseBeatAtom(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// parseVec3 parses "x", "x,z" or "x,y,z". One component leaves y=z=0; two
// components are read as (x, 0, z).
func parseVec3(s string) (Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) > 3 {
		return Vec3{}, fmt.Errorf("position %q: too many components", s)
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Vec3{}, fmt.Errorf("position %q: %w", s, err)
		}
		vals[i] = v
	}
	switch len(vals) {
	case 1:
		return Vec3{X: vals[0]}, nil
	case 2:
		return Vec3{X: vals[0], Z: vals[1]}, nil
	default:
		return Vec3{X: vals[0], Y: vals[1], Z: vals[2]}, nil
	}
}

// parsePositions parses the "|...|" content: vectors separated by ';'.
func parsePositions(s string) ([]Vec3, error) {
	parts := strings.Split(s, ";")
	out := make([]Vec3, 0, len(parts))
	for _, p := range parts {
		v, err := parseVec3(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// parseColor parses RRGGBB hex; alpha is fixed at 255.
func parseColor(s string) (RGBA8, error) {
	if len(s) != 6 {
		return RGBA8{}, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGBA8{}, fmt.Errorf("color %q: %w", s, err)
	}
	return RGBA8{
		R: uint8(n >> 16),
		G: uint8(n >> 8),
		B: uint8(n),
		A: 0xFF,
	}, nil
}

func parseTimeSignatureValue(s string) (TimeSignature, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return TimeSignature{}, fmt.Errorf("time signature %q: want numerator/denominator", s)
	}
	num, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return TimeSignature{}, fmt.Errorf("time signature %q: %w", s, err)
	}
	den, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return TimeSignature{}, fmt.Errorf("time signature %q: %w", s, err)
	}
	if num <= 0 || den <= 0 {
		return TimeSignature{}, fmt.Errorf("time signature %q: fields must be positive", s)
	}
	return TimeSignature{NumBeats: num, NoteValue: den}, nil
}

// ---------- Edge blocks ----------

// rawEdge is an edge descriptor before beat resolution.
type rawEdge struct {
	kind   EdgeKind
	p0, p1 struct {
		x    float64
		beat BeatPosition
	}
}

// parseEdgeSide parses one side of an edge block: empty for straight, "m"
// for mirror, or "x0,b0 : x1,b1" where each beat may carry a ",k" bar skip.
func parseEdgeSide(s string) (rawEdge, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return rawEdge{kind: EdgeStraight}, nil
	}
	if s == "m" {
		return rawEdge{kind: EdgeMirror}, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return rawEdge{}, fmt.Errorf("edge %q: want two control points", s)
	}
	e := rawEdge{kind: EdgeExplicit}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		xs, bs, found := strings.Cut(p, ",")
		if !found {
			return rawEdge{}, fmt.Errorf("edge control point %q: want x,beat", p)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		if err != nil {
			return rawEdge{}, fmt.Errorf("edge control point %q: %w", p, err)
		}
		beat, err := parseBeatAtom(strings.TrimSpace(bs))
		if err != nil {
			return rawEdge{}, fmt.Errorf("edge control point %q: %w", p, err)
		}
		if i == 0 {
			e.p0.x, e.p0.beat = x, beat
		} else {
			e.p1.x, e.p1.beat = x, beat
		}
	}
	return e, nil
}

// parseEdgeBlock parses "{left;right}" content. Mutual mirroring is invalid:
// a mirror edge copies the other side, so the other side must be concrete.
func parseEdgeBlock(s string) (left, right rawEdge, err error) {
	ls, rs, found := strings.Cut(s, ";")
	if !found {
		return rawEdge{}, rawEdge{}, fmt.Errorf("edge block %q: want left;right", s)
	}
	if left, err = parseEdgeSide(ls); err != nil {
		return rawEdge{}, rawEdge{}, err
	}
	if right, err = parseEdgeSide(rs); err != nil {
		return rawEdge{}, rawEdge{}, err
	}
	if left.kind == EdgeMirror && right.kind == EdgeMirror {
		return rawEdge{}, rawEdge{}, fmt.Errorf("edge block %q: both sides mirror", s)
	}
	return left, right, nil
}

// ---------- Animation values ----------

// parseAnimationValue parses "T,450,{v0;v1}". The type char selects how the
// brace block is read: start;end for translate/scale, rotation;center for
// rotate.
func parseAnimationValue(name, s string) (AnimationDef, error) {
	brace := strings.Index(s, "{")
	if brace < 0 || !strings.HasSuffix(strings.TrimSpace(s), "}") {
		return AnimationDef{}, fmt.Errorf("animation %q: missing value block", name)
	}
	head := strings.TrimSuffix(strings.TrimSpace(s[:brace]), ",")
	block := strings.TrimSpace(s[brace:])
	block = strings.TrimSpace(block[1 : len(block)-1])

	typeStr, durStr, found := strings.Cut(head, ",")
	if !found {
		return AnimationDef{}, fmt.Errorf("animation %q: want type,duration,{...}", name)
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(durStr), 64)
	if err != nil {
		return AnimationDef{}, fmt.Errorf("animation %q duration: %w", name, err)
	}

	def := AnimationDef{Name: name, DurationMs: dur}
	switch strings.TrimSpace(typeStr) {
	case "T":
		def.Type = AnimTranslate
	case "R":
		def.Type = AnimRotate
	case "S":
		def.Type = AnimScale
	default:
		return AnimationDef{}, fmt.Errorf("animation %q: unrecognized animation_type %q", name, strings.TrimSpace(typeStr))
	}

	vecs, err := parsePositions(block)
	if err != nil {
		return AnimationDef{}, fmt.Errorf("animation %q: %w", name, err)
	}
	if len(vecs) != 2 {
		return AnimationDef{}, fmt.Errorf("animation %q: want two vectors", name)
	}
	if def.Type == AnimRotate {
		def.AxisRotation, def.Center = vecs[0], vecs[1]
	} else {
		def.Start, def.End = vecs[0], vecs[1]
	}
	return def, nil
}
