package dotlzm

// ---------- Chart model ----------

type TimeSignature struct {
	NumBeats  int
	NoteValue int
}

type Header struct {
	AudioFilename        string
	AudioOffsetMs        int
	DefaultTempo         int
	DefaultTimeSignature TimeSignature
}

type RGBA8 struct {
	R, G, B, A uint8
}

// Measure is one bar of the resolved timeline. StartTimeMs and DurationMs are
// derived while folding the chart body; every other field is either written
// by a measure option or inherited from the previous measure.
type Measure struct {
	Index         int
	TimeSignature TimeSignature
	Tempo         int
	Subdivision   int
	StartTimeMs   float64
	DurationMs    float64
}

// BeatPosition is a position in subdivision units relative to the start of a
// measure, optionally skipping ahead whole bars.
type BeatPosition struct {
	Value     float64
	BarsAhead int
}

type Vec3 struct {
	X, Y, Z float64
}

// ---------- Note styles ----------

type NoteTypeKey uint8

const (
	KeyBasic1 NoteTypeKey = iota
	KeyBasic2
	KeyBasic3
	KeyBasic4
	KeyTarget
	KeyFlick
	KeyEvade1
	KeyEvade2
	KeyEvade3
	KeyEvade4
	KeyContact1
	KeyContact2
)

type NoteStyle struct {
	Color RGBA8
}

var noteKeyNames = map[string]NoteTypeKey{
	"B1": KeyBasic1, "B2": KeyBasic2, "B3": KeyBasic3, "B4": KeyBasic4,
	"T": KeyTarget, "F": KeyFlick,
	"E1": KeyEvade1, "E2": KeyEvade2, "E3": KeyEvade3, "E4": KeyEvade4,
	"C1": KeyContact1, "C2": KeyContact2,
}

func defaultNoteStyles() map[NoteTypeKey]NoteStyle {
	return map[NoteTypeKey]NoteStyle{
		KeyBasic1:   {Color: RGBA8{0xE8, 0x45, 0x45, 0xFF}},
		KeyBasic2:   {Color: RGBA8{0x45, 0xA2, 0xE8, 0xFF}},
		KeyBasic3:   {Color: RGBA8{0x6B, 0xE8, 0x45, 0xFF}},
		KeyBasic4:   {Color: RGBA8{0xE8, 0xD6, 0x45, 0xFF}},
		KeyTarget:   {Color: RGBA8{0xFF, 0xFF, 0xFF, 0xFF}},
		KeyFlick:    {Color: RGBA8{0xCC, 0xCC, 0x19, 0xFF}},
		KeyEvade1:   {Color: RGBA8{0x99, 0x33, 0xE5, 0xFF}},
		KeyEvade2:   {Color: RGBA8{0xB3, 0x4D, 0xE5, 0xFF}},
		KeyEvade3:   {Color: RGBA8{0x7F, 0x19, 0xCC, 0xFF}},
		KeyEvade4:   {Color: RGBA8{0xCC, 0x66, 0xFF, 0xFF}},
		KeyContact1: {Color: RGBA8{0xFF, 0xFF, 0x00, 0xFF}},
		KeyContact2: {Color: RGBA8{0xE5, 0xB3, 0x00, 0xFF}},
	}
}

// ---------- Animations ----------

type AnimationType uint8

const (
	AnimTranslate AnimationType = iota
	AnimRotate
	AnimScale
)

// AnimationDef is a named animation from the <animations> section. Translate
// and Scale use Start/End, Rotate uses AxisRotation (ZYX euler, degrees) and
// Center.
type AnimationDef struct {
	Name       string
	Type       AnimationType
	DurationMs float64

	Start, End Vec3

	AxisRotation Vec3
	Center       Vec3
}

// ---------- Bezier edges ----------

type EdgeKind uint8

const (
	EdgeStraight EdgeKind = iota
	EdgeExplicit
	EdgeMirror
)

type EdgeControl struct {
	X      float64
	Beat   BeatPosition
	TimeMs float64
}

// EdgePoint is one sample of a resolved edge curve: lateral position at an
// absolute time.
type EdgePoint struct {
	X      float64
	TimeMs float64
}

// BezierEdge is one lateral boundary of a platform or hold note. P0/P1 are
// set for explicit edges and for resolved mirror copies; Points always holds
// the sampled polyline, anchors included.
type BezierEdge struct {
	Kind   EdgeKind
	P0, P1 EdgeControl
	Points []EdgePoint
}

// ---------- Body objects ----------

type ObjectKind uint8

const (
	KindPlatformRect ObjectKind = iota
	KindPlatformQuad
	KindPlatformCurved
	KindNoteBasic
	KindNoteTarget
	KindNoteFlick
	KindNoteEvade
	KindNoteContact
	KindHoldBasic
	KindHoldTarget
)

type FlickDirection uint8

const (
	FlickLeft FlickDirection = iota
	FlickRight
)

type BodyObject interface {
	Kind() ObjectKind
	Line() int
	Beats() []BeatPosition
	Times() []float64
	Positions() []Vec3
}

// BaseObject carries what every body object has: the source line, one or two
// beats with their resolved absolute times, and 1/2/4 position vectors.
type BaseObject struct {
	SourceLine int
	Beat       []BeatPosition
	TimeMs     []float64
	Position   []Vec3
}

func (b BaseObject) Line() int             { return b.SourceLine }
func (b BaseObject) Beats() []BeatPosition { return b.Beat }
func (b BaseObject) Times() []float64      { return b.TimeMs }
func (b BaseObject) Positions() []Vec3     { return b.Position }

// PlatformRect with Static set has its end derived from the next platform's
// start rather than written in the chart.
type PlatformRect struct {
	BaseObject
	Static bool
}

func (PlatformRect) Kind() ObjectKind { return KindPlatformRect }

type PlatformQuad struct {
	BaseObject
}

func (PlatformQuad) Kind() ObjectKind { return KindPlatformQuad }

// PlatformCurved positions are ordered start-left, start-right, end-left,
// end-right.
type PlatformCurved struct {
	BaseObject
	LeftEdge  BezierEdge
	RightEdge BezierEdge
}

func (PlatformCurved) Kind() ObjectKind { return KindPlatformCurved }

type NoteBasic struct {
	BaseObject
	ColorIndex int
}

func (NoteBasic) Kind() ObjectKind { return KindNoteBasic }

type NoteTarget struct {
	BaseObject
}

func (NoteTarget) Kind() ObjectKind { return KindNoteTarget }

type NoteFlick struct {
	BaseObject
	Direction FlickDirection
	EndX      float64
	HasEndX   bool
}

func (NoteFlick) Kind() ObjectKind { return KindNoteFlick }

// NoteEvade's chart position is its final (hit-bar) position; SpawnPosition
// and SpawnTimeMs are derived by inverting the referenced animations so the
// renderer never re-derives timing math.
type NoteEvade struct {
	BaseObject
	ColorIndex    int
	AnimationRefs []string
	SpawnPosition Vec3
	SpawnTimeMs   float64
}

func (NoteEvade) Kind() ObjectKind { return KindNoteEvade }

type NoteContact struct {
	BaseObject
	ColorIndex int
}

func (NoteContact) Kind() ObjectKind { return KindNoteContact }

type HoldBasic struct {
	BaseObject
	ColorIndex int
	LeftEdge   BezierEdge
	RightEdge  BezierEdge
}

func (HoldBasic) Kind() ObjectKind { return KindHoldBasic }

type HoldTarget struct {
	BaseObject
	LeftEdge  BezierEdge
	RightEdge BezierEdge
}

func (HoldTarget) Kind() ObjectKind { return KindHoldTarget }

// ---------- Root value ----------

type Chart struct {
	Header      Header
	NoteStyles  map[NoteTypeKey]NoteStyle
	Animations  map[string]AnimationDef
	Timeline    []Measure
	Objects     []BodyObject
	Diagnostics []Diagnostic
}

// StyleFor never misses: unconfigured keys fall back to the defaults.
func (c *Chart) StyleFor(key NoteTypeKey) NoteStyle {
	if s, ok := c.NoteStyles[key]; ok {
		return s
	}
	return defaultNoteStyles()[key]
}

// Failed reports whether any fatal diagnostic was recorded. Recoverable
// diagnostics never block a load.
func (c *Chart) Failed() bool {
	for _, d := range c.Diagnostics {
		if d.Severity == FatalResolution || d.Severity == FatalStructural {
			return true
		}
	}
	return false
}

// ResolveBeat converts a beat position relative to measure index into
// absolute milliseconds. The referenced measure must exist in the timeline.
func (c *Chart) ResolveBeat(measureIndex int, b BeatPosition) (float64, error) {
	return resolveBeat(c.Timeline, measureIndex, b)
}
