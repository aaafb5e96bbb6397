package dotlzm

import "strconv"

// ---------- Section table builders ----------
//
// The three builders are pure accumulation over pre-classified line runs and
// have no dependency on each other or on the chart body, so Compile runs them
// as parallel tasks. Last writer wins everywhere; redefinitions of named
// entries are reported but not rejected.

func buildHeader(lines []classifiedLine, sink *diagSink) Header {
	h := Header{
		DefaultTempo:         120,
		DefaultTimeSignature: TimeSignature{NumBeats: 4, NoteValue: 4},
	}
	for _, l := range lines {
		if l.kind != lineKeyValue {
			sink.add(RecoverableSyntax, l.num, "header", "unexpected line in header section")
			continue
		}
		switch l.key {
		case "audio_filename":
			h.AudioFilename = l.value
		case "audio_offset":
			v, err := strconv.Atoi(l.value)
			if err != nil {
				sink.add(RecoverableSyntax, l.num, "header", "audio_offset %q: not an integer", l.value)
				continue
			}
			h.AudioOffsetMs = v
		case "default_tempo":
			v, err := strconv.Atoi(l.value)
			if err != nil || v <= 0 {
				sink.add(RecoverableSyntax, l.num, "header", "default_tempo %q: want positive integer", l.value)
				continue
			}
			h.DefaultTempo = v
		case "default_time_signature":
			ts, err := parseTimeSignatureValue(l.value)
			if err != nil {
				sink.add(RecoverableSyntax, l.num, "header", "%v", err)
				continue
			}
			h.DefaultTimeSignature = ts
		default:
			sink.add(RecoverableSyntax, l.num, "header", "unrecognized header key %q", l.key)
		}
	}
	return h
}

func buildNoteStyles(lines []classifiedLine, sink *diagSink) map[NoteTypeKey]NoteStyle {
	styles := defaultNoteStyles()
	configured := make(map[NoteTypeKey]bool)

	active := NoteTypeKey(0)
	haveActive := false
	for _, l := range lines {
		switch l.kind {
		case lineSubHeading:
			key, ok := noteKeyNames[l.sub]
			if !ok {
				sink.add(RecoverableSyntax, l.num, "notes", "unknown note type %q", l.sub)
				haveActive = false
				continue
			}
			active = key
			haveActive = true
		case lineKeyValue:
			if !haveActive {
				sink.add(RecoverableSyntax, l.num, "notes", "note option %q outside a note type heading", l.key)
				continue
			}
			switch l.key {
			case "color":
				c, err := parseColor(l.value)
				if err != nil {
					sink.add(RecoverableSyntax, l.num, "notes", "%v", err)
					continue
				}
				if configured[active] {
					sink.add(RecoverableSyntax, l.num, "notes", "redefinition of note style %q", subNameFor(active))
				}
				configured[active] = true
				styles[active] = NoteStyle{Color: c}
			default:
				sink.add(RecoverableSyntax, l.num, "notes", "unrecognized note option %q", l.key)
			}
		default:
			sink.add(RecoverableSyntax, l.num, "notes", "unexpected line in notes section")
		}
	}
	return styles
}

func subNameFor(key NoteTypeKey) string {
	for name, k := range noteKeyNames {
		if k == key {
			return name
		}
	}
	return "?"
}

func buildAnimations(lines []classifiedLine, sink *diagSink) map[string]AnimationDef {
	anims := make(map[string]AnimationDef)
	for _, l := range lines {
		if l.kind != lineKeyValue {
			sink.add(RecoverableSyntax, l.num, "animations", "unexpected line in animations section")
			continue
		}
		def, err := parseAnimationValue(l.key, l.value)
		if err != nil {
			// A dropped entry fails at reference time, not here.
			sink.add(RecoverableSyntax, l.num, "animations", "%v", err)
			continue
		}
		if _, dup := anims[l.key]; dup {
			sink.add(RecoverableSyntax, l.num, "animations", "redefinition of animation %q", l.key)
		}
		anims[l.key] = def
	}
	return anims
}
