package dotlzm

import (
	"math"
	"testing"
)

func almostEqMs(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

const timelineSrc = `
<header>
audio_filename=song.ogg
default_tempo=120
default_time_signature=4/4

<chart_body>
--
tempo=150
--
time_signature=3/8
--
subdivision=16
--
`

func TestTimelineFold(t *testing.T) {
	c := CompileString(timelineSrc)
	if c.Failed() {
		t.Fatalf("unexpected failure: %v", c.Diagnostics)
	}
	if len(c.Timeline) != 4 {
		t.Fatalf("got %d measures", len(c.Timeline))
	}

	m0 := c.Timeline[0]
	if !almostEqMs(m0.DurationMs, 2000) {
		t.Fatalf("4 * (60000/120) * (4/4) = 2000, got %v", m0.DurationMs)
	}
	if m0.StartTimeMs != 0 {
		t.Fatalf("first measure must start at 0, got %v", m0.StartTimeMs)
	}
	if m0.Tempo != 120 || m0.Subdivision != 4 {
		t.Fatalf("got %+v", m0)
	}

	// Tempo override; time signature inherited.
	m1 := c.Timeline[1]
	if m1.Tempo != 150 || m1.TimeSignature != m0.TimeSignature {
		t.Fatalf("got %+v", m1)
	}
	if !almostEqMs(m1.DurationMs, 4*(60000.0/150)) {
		t.Fatalf("got %v", m1.DurationMs)
	}

	// New time signature; tempo inherited from the predecessor, and the
	// subdivision stays at the concrete value the first measure settled on.
	m2 := c.Timeline[2]
	if m2.TimeSignature != (TimeSignature{NumBeats: 3, NoteValue: 8}) || m2.Tempo != 150 {
		t.Fatalf("got %+v", m2)
	}
	if m2.Subdivision != 4 {
		t.Fatalf("subdivision must inherit, got %d", m2.Subdivision)
	}
	if !almostEqMs(m2.DurationMs, 3*(60000.0/150)*(4.0/8.0)) {
		t.Fatalf("got %v", m2.DurationMs)
	}

	if c.Timeline[3].Subdivision != 16 {
		t.Fatalf("got %+v", c.Timeline[3])
	}

	// Cumulative starts.
	for i := 1; i < len(c.Timeline); i++ {
		prev := c.Timeline[i-1]
		if !almostEqMs(c.Timeline[i].StartTimeMs, prev.StartTimeMs+prev.DurationMs) {
			t.Fatalf("measure %d start %v, want %v", i, c.Timeline[i].StartTimeMs, prev.StartTimeMs+prev.DurationMs)
		}
	}
}

func TestResolveBeatRoundTrip(t *testing.T) {
	c := CompileString(timelineSrc)
	for i, m := range c.Timeline {
		got, err := c.ResolveBeat(i, BeatPosition{})
		if err != nil {
			t.Fatal(err)
		}
		if !almostEqMs(got, m.StartTimeMs) {
			t.Fatalf("measure %d: got %v, want %v", i, got, m.StartTimeMs)
		}
	}
}

func TestResolveBeatBarSkip(t *testing.T) {
	c := CompileString(timelineSrc)
	got, err := c.ResolveBeat(0, BeatPosition{Value: 2, BarsAhead: 1})
	if err != nil {
		t.Fatal(err)
	}
	m1 := c.Timeline[1]
	want := m1.StartTimeMs + (2.0/float64(m1.Subdivision))*m1.DurationMs
	if !almostEqMs(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if _, err = c.ResolveBeat(0, BeatPosition{BarsAhead: 99}); err == nil {
		t.Fatal("want error for beat past the timeline")
	}
}

func TestResolveBeatOutsideMeasureIsLegal(t *testing.T) {
	// Values past the numerator are pickup/anticipation positions, not errors.
	c := CompileString(timelineSrc)
	got, err := c.ResolveBeat(0, BeatPosition{Value: 6})
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqMs(got, (6.0/4.0)*2000) {
		t.Fatalf("got %v", got)
	}
}

func TestTimelineFinalGroupWithoutSeparator(t *testing.T) {
	c := CompileString(`
<header>
default_tempo=60
default_time_signature=4/4
<chart_body>
--
tempo=90
[B1] (0) |0|
`)
	if len(c.Timeline) != 2 {
		t.Fatalf("got %d measures", len(c.Timeline))
	}
	if c.Timeline[1].Tempo != 90 {
		t.Fatalf("got %+v", c.Timeline[1])
	}
}
