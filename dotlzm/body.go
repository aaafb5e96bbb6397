package dotlzm

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ---------- Body object builder ----------

type bodyBuilder struct {
	timeline []Measure
	anims    map[string]AnimationDef
	sink     *diagSink

	objects []BodyObject

	// Index into objects of a static rect platform whose end is still
	// waiting for the next platform's start, -1 if none.
	pendingStatic int
}

// buildBody runs strictly after the table builders and the timeline fold. It
// tracks the active measure alongside the bar-separator stream and isolates
// faults per object: a bad line drops that object and compilation continues.
func buildBody(lines []classifiedLine, timeline []Measure, anims map[string]AnimationDef, sink *diagSink) []BodyObject {
	b := &bodyBuilder{
		timeline:      timeline,
		anims:         anims,
		sink:          sink,
		pendingStatic: -1,
	}
	active := 0
	for _, l := range lines {
		switch l.kind {
		case lineBarSep:
			active++
		case lineBody:
			b.object(l, active)
		}
	}
	b.finishStatic()
	return b.objects
}

func (b *bodyBuilder) fatal(line int, format string, args ...any) {
	b.sink.add(FatalResolution, line, "chart_body", format, args...)
}

// beats parses and resolves the line's beat expression, enforcing arity.
func (b *bodyBuilder) beats(l classifiedLine, active, want int) ([]BeatPosition, []float64, bool) {
	bs, err := parseBeatExpr(l.body.rawBeat)
	if err != nil {
		b.fatal(l.num, "[%s] %v", l.body.tag, err)
		return nil, nil, false
	}
	if len(bs) != want {
		b.fatal(l.num, "[%s] wants %d beat(s), got %d", l.body.tag, want, len(bs))
		return nil, nil, false
	}
	times := make([]float64, len(bs))
	for i, beat := range bs {
		t, err := resolveBeat(b.timeline, active, beat)
		if err != nil {
			b.fatal(l.num, "[%s] %v", l.body.tag, err)
			return nil, nil, false
		}
		times[i] = t
	}
	return bs, times, true
}

func (b *bodyBuilder) positions(l classifiedLine, want int) ([]Vec3, bool) {
	vs, err := parsePositions(l.body.rawPos)
	if err != nil {
		b.fatal(l.num, "[%s] %v", l.body.tag, err)
		return nil, false
	}
	if len(vs) != want {
		b.fatal(l.num, "[%s] wants %d position(s), got %d", l.body.tag, want, len(vs))
		return nil, false
	}
	return vs, true
}

func (b *bodyBuilder) base(l classifiedLine, beats []BeatPosition, times []float64, pos []Vec3) BaseObject {
	return BaseObject{SourceLine: l.num, Beat: beats, TimeMs: times, Position: pos}
}

// object dispatches on the body type tag. The tag set is closed; anything
// else is a recoverable diagnostic and the line is skipped.
func (b *bodyBuilder) object(l classifiedLine, active int) {
	tag := l.body.tag
	switch tag {
	case "PR":
		beats, times, ok := b.beats(l, active, 2)
		if !ok {
			return
		}
		pos, ok := b.positions(l, 2)
		if !ok {
			return
		}
		b.completeStatic(beats[0], times[0], pos[0])
		b.objects = append(b.objects, PlatformRect{BaseObject: b.base(l, beats, times, pos)})

	case "PRS":
		beats, times, ok := b.beats(l, active, 1)
		if !ok {
			return
		}
		pos, ok := b.positions(l, 1)
		if !ok {
			return
		}
		b.completeStatic(beats[0], times[0], pos[0])
		b.objects = append(b.objects, PlatformRect{BaseObject: b.base(l, beats, times, pos), Static: true})
		b.pendingStatic = len(b.objects) - 1

	case "PQ":
		beats, times, ok := b.beats(l, active, 2)
		if !ok {
			return
		}
		pos, ok := b.positions(l, 4)
		if !ok {
			return
		}
		b.completeStatic(beats[0], times[0], pos[0])
		b.objects = append(b.objects, PlatformQuad{BaseObject: b.base(l, beats, times, pos)})

	case "PC":
		beats, times, ok := b.beats(l, active, 2)
		if !ok {
			return
		}
		pos, ok := b.positions(l, 4)
		if !ok {
			return
		}
		left, right, ok := b.curvedEdges(l, active, pos, times)
		if !ok {
			return
		}
		b.completeStatic(beats[0], times[0], pos[0])
		b.objects = append(b.objects, PlatformCurved{
			BaseObject: b.base(l, beats, times, pos),
			LeftEdge:   left,
			RightEdge:  right,
		})

	case "B1", "B2", "B3", "B4":
		beats, times, ok := b.beats(l, active, 1)
		if !ok {
			return
		}
		pos, ok := b.positions(l, 1)
		if !ok {
			return
		}
		b.objects = append(b.objects, NoteBasic{
			BaseObject: b.base(l, beats, times, pos),
			ColorIndex: int(tag[1] - '0'),
		})

	case "T":
		beats, times, ok := b.beats(l, active, 1)
		if !ok {
			return
		}
		pos, ok := b.positions(l, 1)
		if !ok {
			return
		}
		b.objects = append(b.objects, NoteTarget{BaseObject: b.base(l, beats, times, pos)})

	case "FL", "FR":
		beats, times, ok := b.beats(l, active, 1)
		if !ok {
			return
		}
		pos, ok := b.positions(l, 1)
		if !ok {
			return
		}
		n := NoteFlick{BaseObject: b.base(l, beats, times, pos)}
		if tag == "FR" {
			n.Direction = FlickRight
		}
		if opts := strings.TrimSpace(l.body.rawOpts); l.body.hasOptions && opts != "" {
			end, err := strconv.ParseFloat(opts, 64)
			if err != nil {
				b.fatal(l.num, "[%s] end position %q: want a single float", tag, opts)
				return
			}
			n.EndX, n.HasEndX = end, true
		}
		b.objects = append(b.objects, n)

	case "E1", "E2", "E3", "E4":
		beats, times, ok := b.beats(l, active, 1)
		if !ok {
			return
		}
		pos, ok := b.positions(l, 1)
		if !ok {
			return
		}
		refs := splitAnimationRefs(l.body.rawOpts)
		if len(refs) == 0 {
			b.sink.add(RecoverableSyntax, l.num, "chart_body", "[%s] evade note without animation references", tag)
			return
		}
		spawn, spawnMs, ok := b.evadeSpawn(l, refs, pos[0], times[0])
		if !ok {
			return
		}
		b.objects = append(b.objects, NoteEvade{
			BaseObject:    b.base(l, beats, times, pos),
			ColorIndex:    int(tag[1] - '0'),
			AnimationRefs: refs,
			SpawnPosition: spawn,
			SpawnTimeMs:   spawnMs,
		})

	case "C1", "C2":
		beats, times, ok := b.beats(l, active, 1)
		if !ok {
			return
		}
		pos, ok := b.positions(l, 1)
		if !ok {
			return
		}
		b.objects = append(b.objects, NoteContact{
			BaseObject: b.base(l, beats, times, pos),
			ColorIndex: int(tag[1] - '0'),
		})

	case "HB1", "HB2", "HB3", "HB4":
		beats, times, ok := b.beats(l, active, 2)
		if !ok {
			return
		}
		pos, ok := b.positions(l, 2)
		if !ok {
			return
		}
		left, right, ok := b.holdEdges(l, active, pos, times)
		if !ok {
			return
		}
		b.objects = append(b.objects, HoldBasic{
			BaseObject: b.base(l, beats, times, pos),
			ColorIndex: int(tag[2] - '0'),
			LeftEdge:   left,
			RightEdge:  right,
		})

	case "HT":
		beats, times, ok := b.beats(l, active, 2)
		if !ok {
			return
		}
		pos, ok := b.positions(l, 2)
		if !ok {
			return
		}
		left, right, ok := b.holdEdges(l, active, pos, times)
		if !ok {
			return
		}
		b.objects = append(b.objects, HoldTarget{
			BaseObject: b.base(l, beats, times, pos),
			LeftEdge:   left,
			RightEdge:  right,
		})

	default:
		b.sink.add(RecoverableSyntax, l.num, "chart_body", "unrecognized body type %q", tag)
	}
}

// ---------- Static rect platform linking ----------
//
// A static rect's end is the next platform's start, unknown at parse time.
// The placeholder is re-derived into the final object once the successor is
// seen, instead of mutating the already-emitted value piecemeal.

func (b *bodyBuilder) completeStatic(endBeat BeatPosition, endTimeMs float64, endPos Vec3) {
	if b.pendingStatic < 0 {
		return
	}
	p := b.objects[b.pendingStatic].(PlatformRect)
	b.objects[b.pendingStatic] = PlatformRect{
		BaseObject: BaseObject{
			SourceLine: p.SourceLine,
			Beat:       []BeatPosition{p.Beat[0], endBeat},
			TimeMs:     []float64{p.TimeMs[0], endTimeMs},
			Position:   []Vec3{p.Position[0], endPos},
		},
		Static: true,
	}
	b.pendingStatic = -1
}

// finishStatic flags a trailing static rect and extends it zero-length so the
// renderer still gets a well-formed platform.
func (b *bodyBuilder) finishStatic() {
	if b.pendingStatic < 0 {
		return
	}
	p := b.objects[b.pendingStatic].(PlatformRect)
	b.sink.add(RecoverableReference, p.SourceLine, "chart_body",
		"static rect platform has no successor to define its end; using zero-length extension")
	b.completeStatic(p.Beat[0], p.TimeMs[0], p.Position[0])
}

// ---------- Curved edges ----------

// curvedEdges resolves the {left;right} edge block of a curved platform.
// Positions are start-left, start-right, end-left, end-right.
func (b *bodyBuilder) curvedEdges(l classifiedLine, active int, pos []Vec3, times []float64) (BezierEdge, BezierEdge, bool) {
	leftRaw := rawEdge{kind: EdgeStraight}
	rightRaw := rawEdge{kind: EdgeStraight}
	if opts := strings.TrimSpace(l.body.rawOpts); l.body.hasOptions && opts != "" {
		var err error
		leftRaw, rightRaw, err = parseEdgeBlock(opts)
		if err != nil {
			b.fatal(l.num, "[%s] %v", l.body.tag, err)
			return BezierEdge{}, BezierEdge{}, false
		}
	}
	left, err := b.resolveEdge(leftRaw, active, pos[0].X, pos[2].X, times[0], times[1])
	if err != nil {
		b.fatal(l.num, "[%s] left edge: %v", l.body.tag, err)
		return BezierEdge{}, BezierEdge{}, false
	}
	right, err := b.resolveEdge(rightRaw, active, pos[1].X, pos[3].X, times[0], times[1])
	if err != nil {
		b.fatal(l.num, "[%s] right edge: %v", l.body.tag, err)
		return BezierEdge{}, BezierEdge{}, false
	}
	// A mirror edge copies the sibling's resolved curve verbatim, which makes
	// the pair parallel by construction.
	if left.Kind == EdgeMirror {
		left = mirrorOf(right)
	} else if right.Kind == EdgeMirror {
		right = mirrorOf(left)
	}
	return left, right, true
}

// holdEdges resolves a hold note's edge pair. Hold edges share the hold's own
// anchors and must stay parallel: a lone explicit side means "both", a second
// explicit side is invalid, and an empty right side next to an explicit left
// becomes its mirror.
func (b *bodyBuilder) holdEdges(l classifiedLine, active int, pos []Vec3, times []float64) (BezierEdge, BezierEdge, bool) {
	opts := strings.TrimSpace(l.body.rawOpts)
	leftRaw := rawEdge{kind: EdgeStraight}
	rightRaw := rawEdge{kind: EdgeMirror}
	if l.body.hasOptions && opts != "" {
		var err error
		if strings.Contains(opts, ";") {
			leftRaw, rightRaw, err = parseEdgeBlock(opts)
			if err == nil && rightRaw.kind == EdgeExplicit {
				err = errHoldEdgesDiverge
			}
			if err == nil && leftRaw.kind == EdgeExplicit {
				rightRaw = rawEdge{kind: EdgeMirror}
			}
		} else {
			leftRaw, err = parseEdgeSide(opts)
			if err == nil && leftRaw.kind == EdgeMirror {
				err = errBothMirror
			}
		}
		if err != nil {
			b.fatal(l.num, "[%s] %v", l.body.tag, err)
			return BezierEdge{}, BezierEdge{}, false
		}
	}
	left, err := b.resolveEdge(leftRaw, active, pos[0].X, pos[1].X, times[0], times[1])
	if err != nil {
		b.fatal(l.num, "[%s] left edge: %v", l.body.tag, err)
		return BezierEdge{}, BezierEdge{}, false
	}
	var right BezierEdge
	if rightRaw.kind == EdgeMirror {
		right = mirrorOf(left)
	} else {
		right, err = b.resolveEdge(rightRaw, active, pos[0].X, pos[1].X, times[0], times[1])
		if err != nil {
			b.fatal(l.num, "[%s] right edge: %v", l.body.tag, err)
			return BezierEdge{}, BezierEdge{}, false
		}
		if left.Kind == EdgeMirror {
			left = mirrorOf(right)
		}
	}
	return left, right, true
}

var (
	errBothMirror      = errors.New("mirror edge has no concrete sibling to copy")
	errHoldEdgesDiverge = errors.New("hold edges cannot diverge; the right side must be empty or m")
)

// resolveEdge turns a raw edge into a concrete curve. Mirror edges come back
// unresolved; the caller copies the sibling once it is concrete.
func (b *bodyBuilder) resolveEdge(e rawEdge, active int, startX, endX, startMs, endMs float64) (BezierEdge, error) {
	start := EdgePoint{X: startX, TimeMs: startMs}
	end := EdgePoint{X: endX, TimeMs: endMs}
	switch e.kind {
	case EdgeStraight:
		return BezierEdge{Kind: EdgeStraight, Points: straightEdgePoints(start, end)}, nil
	case EdgeMirror:
		return BezierEdge{Kind: EdgeMirror}, nil
	}
	t0, err := resolveBeat(b.timeline, active, e.p0.beat)
	if err != nil {
		return BezierEdge{}, err
	}
	t1, err := resolveBeat(b.timeline, active, e.p1.beat)
	if err != nil {
		return BezierEdge{}, err
	}
	p0 := EdgeControl{X: e.p0.x, Beat: e.p0.beat, TimeMs: t0}
	p1 := EdgeControl{X: e.p1.x, Beat: e.p1.beat, TimeMs: t1}
	points := cubicEdgePoints(start, EdgePoint{X: p0.X, TimeMs: p0.TimeMs}, EdgePoint{X: p1.X, TimeMs: p1.TimeMs}, end)
	return BezierEdge{Kind: EdgeExplicit, P0: p0, P1: p1, Points: points}, nil
}

func mirrorOf(sibling BezierEdge) BezierEdge {
	points := make([]EdgePoint, len(sibling.Points))
	copy(points, sibling.Points)
	return BezierEdge{
		Kind:   EdgeMirror,
		P0:     sibling.P0,
		P1:     sibling.P1,
		Points: points,
	}
}

// ---------- Evade spawn derivation ----------

func splitAnimationRefs(opts string) []string {
	var refs []string
	for _, r := range strings.Split(opts, ",") {
		if r = strings.TrimSpace(r); r != "" {
			refs = append(refs, r)
		}
	}
	return refs
}

// evadeSpawn inverts the referenced animations, last listed first, to recover
// where the note spawns. The chart position is the final hit-bar position;
// translate/scale store their cumulative offset in End, rotate spins around
// Center.
func (b *bodyBuilder) evadeSpawn(l classifiedLine, refs []string, final Vec3, hitMs float64) (Vec3, float64, bool) {
	for _, name := range refs {
		if _, ok := b.anims[name]; !ok {
			b.sink.add(RecoverableReference, l.num, "chart_body",
				"[%s] unresolved animation %q", l.body.tag, name)
			return Vec3{}, 0, false
		}
	}
	pos := final
	total := 0.0
	for i := len(refs) - 1; i >= 0; i-- {
		def := b.anims[refs[i]]
		total += def.DurationMs
		switch def.Type {
		case AnimRotate:
			pos = rotateInverse(pos, def.AxisRotation, def.Center)
		default: // translate, scale
			pos = Vec3{X: pos.X - def.End.X, Y: pos.Y - def.End.Y, Z: pos.Z - def.End.Z}
		}
	}
	return pos, hitMs - total, true
}

// rotateInverse undoes a ZYX euler rotation (degrees) about center.
func rotateInverse(v, axisDeg, center Vec3) Vec3 {
	p := Vec3{X: v.X - center.X, Y: v.Y - center.Y, Z: v.Z - center.Z}
	p = rotZ(p, -rad(axisDeg.Z))
	p = rotY(p, -rad(axisDeg.Y))
	p = rotX(p, -rad(axisDeg.X))
	return Vec3{X: p.X + center.X, Y: p.Y + center.Y, Z: p.Z + center.Z}
}

func rad(deg float64) float64 { return deg * math.Pi / 180.0 }

func rotX(v Vec3, a float64) Vec3 {
	s, c := math.Sincos(a)
	return Vec3{X: v.X, Y: c*v.Y - s*v.Z, Z: s*v.Y + c*v.Z}
}

func rotY(v Vec3, a float64) Vec3 {
	s, c := math.Sincos(a)
	return Vec3{X: c*v.X + s*v.Z, Y: v.Y, Z: -s*v.X + c*v.Z}
}

func rotZ(v Vec3, a float64) Vec3 {
	s, c := math.Sincos(a)
	return Vec3{X: c*v.X - s*v.Y, Y: s*v.X + c*v.Y, Z: v.Z}
}
