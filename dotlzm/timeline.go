package dotlzm

import (
	"fmt"
	"strconv"
)

// ---------- Measure timeline ----------

// measureDurationMs: BPM counts quarter notes, so a measure lasts
// numBeats * (60000/tempo) scaled by 4/noteValue.
func measureDurationMs(ts TimeSignature, tempo int) float64 {
	return float64(ts.NumBeats) * (60000.0 / float64(tempo)) * (4.0 / float64(ts.NoteValue))
}

// buildTimeline folds the chart body's bar-separated groups into resolved
// measures. Each group is zero or more option lines closed by "--"; the final
// group needs no separator. A measure inherits every unset field from its
// predecessor (or the header defaults for the first), and a tempo written
// mid-group applies to the whole measure: intra-measure tempo change is not
// modeled, the last value seen wins.
func buildTimeline(lines []classifiedLine, h Header, sink *diagSink) []Measure {
	ts := h.DefaultTimeSignature
	tempo := h.DefaultTempo
	subdivision := 0 // unset until written; first measure falls back to the denominator

	var measures []Measure
	startMs := 0.0
	content := false

	emit := func() {
		sub := subdivision
		if sub == 0 {
			sub = ts.NoteValue
		}
		dur := measureDurationMs(ts, tempo)
		measures = append(measures, Measure{
			Index:         len(measures),
			TimeSignature: ts,
			Tempo:         tempo,
			Subdivision:   sub,
			StartTimeMs:   startMs,
			DurationMs:    dur,
		})
		startMs += dur
		// Later measures inherit the concrete subdivision, not the
		// denominator fallback.
		subdivision = sub
	}

	for _, l := range lines {
		switch l.kind {
		case lineBarSep:
			emit()
			content = false
		case lineKeyValue:
			content = true
			switch l.key {
			case "time_signature":
				v, err := parseTimeSignatureValue(l.value)
				if err != nil {
					sink.add(RecoverableSyntax, l.num, "chart_body", "%v", err)
					continue
				}
				ts = v
			case "tempo":
				v, err := strconv.Atoi(l.value)
				if err != nil || v <= 0 {
					sink.add(RecoverableSyntax, l.num, "chart_body", "tempo %q: want positive integer", l.value)
					continue
				}
				tempo = v
			case "subdivision":
				v, err := strconv.Atoi(l.value)
				if err != nil || v <= 0 {
					sink.add(RecoverableSyntax, l.num, "chart_body", "subdivision %q: want positive integer", l.value)
					continue
				}
				subdivision = v
			default:
				sink.add(RecoverableSyntax, l.num, "chart_body", "unrecognized chart body key %q", l.key)
			}
		case lineBody:
			content = true
		}
	}
	if content {
		emit()
	}
	return measures
}

// ---------- Beat resolution ----------

// resolveBeat converts a beat position relative to measure `active` into
// absolute milliseconds. The value is in subdivision units of the target
// measure and is deliberately not bounds-checked against the numerator:
// pickup and anticipation notes land outside their measure legally.
func resolveBeat(timeline []Measure, active int, b BeatPosition) (float64, error) {
	target := active + b.BarsAhead
	if target < 0 || target >= len(timeline) {
		return 0, fmt.Errorf("beat references measure %d but the timeline has %d measures", target, len(timeline))
	}
	m := timeline[target]
	return m.StartTimeMs + (b.Value/float64(m.Subdivision))*m.DurationMs, nil
}
