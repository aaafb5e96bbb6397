package dotlzm

import "strings"

// ---------- Line classification ----------

type lineKind uint8

const (
	lineBlank lineKind = iota
	lineSection
	lineSubHeading
	lineKeyValue
	lineBarSep
	lineBody
	lineMalformed
)

// bodyLine is the raw shape of "[tag] (beat) |positions| {options}" before
// any sub-grammar is parsed.
type bodyLine struct {
	tag        string
	rawBeat    string
	rawPos     string
	rawOpts    string
	hasOptions bool
}

type classifiedLine struct {
	num  int
	kind lineKind

	section string // lineSection
	sub     string // lineSubHeading
	key     string // lineKeyValue
	value   string
	body    bodyLine // lineBody
}

// classify assigns exactly one kind to a source line. Inline comments are
// stripped from "//" onward first; a line matching no pattern comes back as
// lineMalformed and the caller records the diagnostic.
func classify(num int, raw string) classifiedLine {
	line := raw
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)

	cl := classifiedLine{num: num}
	switch {
	case line == "":
		cl.kind = lineBlank
	case line == "--":
		cl.kind = lineBarSep
	case strings.HasPrefix(line, "<") && strings.HasSuffix(line, ">"):
		cl.kind = lineSection
		cl.section = strings.TrimSpace(line[1 : len(line)-1])
	case strings.HasPrefix(line, "["):
		end := strings.Index(line, "]")
		if end < 0 {
			cl.kind = lineMalformed
			break
		}
		tag := strings.TrimSpace(line[1:end])
		rest := strings.TrimSpace(line[end+1:])
		if rest == "" {
			cl.kind = lineSubHeading
			cl.sub = tag
			break
		}
		body, ok := splitBodyLine(tag, rest)
		if !ok {
			cl.kind = lineMalformed
			break
		}
		cl.kind = lineBody
		cl.body = body
	case strings.Contains(line, "="):
		i := strings.Index(line, "=")
		cl.kind = lineKeyValue
		cl.key = strings.TrimSpace(line[:i])
		cl.value = strings.TrimSpace(line[i+1:])
		if cl.key == "" {
			cl.kind = lineMalformed
		}
	default:
		cl.kind = lineMalformed
	}
	return cl
}

// splitBodyLine extracts "(beat) |positions| {options}" with the tag already
// stripped. The braces block is optional and defaults to empty.
func splitBodyLine(tag, rest string) (bodyLine, bool) {
	if tag == "" {
		return bodyLine{}, false
	}
	beat, rest, ok := delimited(rest, '(', ')')
	if !ok {
		return bodyLine{}, false
	}
	pos, rest, ok := delimited(rest, '|', '|')
	if !ok {
		return bodyLine{}, false
	}
	bl := bodyLine{tag: tag, rawBeat: beat, rawPos: pos}
	rest = strings.TrimSpace(rest)
	if rest != "" {
		opts, tail, ok := delimited(rest, '{', '}')
		if !ok || strings.TrimSpace(tail) != "" {
			return bodyLine{}, false
		}
		bl.rawOpts = opts
		bl.hasOptions = true
	}
	return bl, true
}

// delimited returns the content between the first open/close pair and
// whatever follows the closing delimiter.
func delimited(s string, opening, closing byte) (content, rest string, ok bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || s[0] != opening {
		return "", "", false
	}
	end := strings.IndexByte(s[1:], closing)
	if end < 0 {
		return "", "", false
	}
	return strings.TrimSpace(s[1 : 1+end]), s[end+2:], true
}
