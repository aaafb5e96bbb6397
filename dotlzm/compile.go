// Package dotlzm compiles .lzm chart source text into a validated,
// time-resolved scene description. The compiler never fails past its
// boundary: it always returns a best-effort Chart plus diagnostics, and the
// caller decides whether a fatal diagnostic blocks the level load.
package dotlzm

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"
)

type section uint8

const (
	secNone section = iota
	secHeader
	secNotes
	secAnimations
	secChartBody
)

func (s section) String() string {
	switch s {
	case secHeader:
		return "header"
	case secNotes:
		return "notes"
	case secAnimations:
		return "animations"
	case secChartBody:
		return "chart_body"
	default:
		return ""
	}
}

func CompileFile(path string) (*Chart, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Compile(f)
}

func CompileString(src string) *Chart {
	// A strings.Reader cannot fail mid-read.
	c, _ := Compile(strings.NewReader(src))
	return c
}

// Compile runs the full pipeline: classify lines, route them to their
// sections, build the three symbol tables in parallel, then fold the measure
// timeline and build body objects sequentially. The returned error covers
// reader failure only; everything about the chart itself is a diagnostic.
func Compile(r io.Reader) (*Chart, error) {
	sc := bufio.NewScanner(r)
	const maxLine = 1024 * 1024
	sc.Buffer(make([]byte, 64*1024), maxLine)

	sink := &diagSink{}

	var headerLines, notesLines, animLines, bodyLines []classifiedLine
	headerSeen := false
	headerBeforeBody := false
	firstBodyObject := 0

	sec := secNone
	num := 0
	for sc.Scan() {
		num++
		cl := classify(num, sc.Text())
		switch cl.kind {
		case lineBlank:

		case lineSection:
			switch cl.section {
			case "header":
				sec = secHeader
				headerSeen = true
			case "notes":
				sec = secNotes
			case "animations":
				sec = secAnimations
			case "chart_body":
				sec = secChartBody
			default:
				sink.add(RecoverableSyntax, num, sec.String(), "unknown section %q", cl.section)
				sec = secNone
			}

		case lineSubHeading:
			if sec == secNotes {
				notesLines = append(notesLines, cl)
			} else {
				sink.add(RecoverableSyntax, num, sec.String(), "note type heading [%s] outside the notes section", cl.sub)
			}

		case lineKeyValue:
			switch sec {
			case secHeader:
				headerLines = append(headerLines, cl)
			case secNotes:
				notesLines = append(notesLines, cl)
			case secAnimations:
				animLines = append(animLines, cl)
			case secChartBody:
				bodyLines = append(bodyLines, cl)
			default:
				sink.add(RecoverableSyntax, num, "", "option %q with no active section", cl.key)
			}

		case lineBarSep:
			if sec == secChartBody {
				bodyLines = append(bodyLines, cl)
			} else {
				sink.add(RecoverableSyntax, num, sec.String(), "bar separator outside the chart body")
			}

		case lineBody:
			if sec == secChartBody {
				bodyLines = append(bodyLines, cl)
				if firstBodyObject == 0 {
					firstBodyObject = num
					headerBeforeBody = headerSeen
				}
			} else {
				sink.add(RecoverableSyntax, num, sec.String(), "body line [%s] outside the chart body", cl.body.tag)
			}

		case lineMalformed:
			sink.add(RecoverableSyntax, num, sec.String(), "malformed line")
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	// The three table builders read disjoint line runs and share only the
	// diagnostics sink, so they run as independent tasks. The timeline and
	// body passes wait on the barrier: they need the tables and are order-
	// dependent themselves.
	var (
		wg     sync.WaitGroup
		header Header
		styles map[NoteTypeKey]NoteStyle
		anims  map[string]AnimationDef
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		header = buildHeader(headerLines, sink)
	}()
	go func() {
		defer wg.Done()
		styles = buildNoteStyles(notesLines, sink)
	}()
	go func() {
		defer wg.Done()
		anims = buildAnimations(animLines, sink)
	}()
	wg.Wait()

	chart := &Chart{
		Header:     header,
		NoteStyles: styles,
		Animations: anims,
	}

	if firstBodyObject > 0 && !headerBeforeBody {
		sink.add(FatalStructural, firstBodyObject, "chart_body",
			"chart body objects require a <header> section before them")
		chart.Diagnostics = sink.sorted()
		return chart, nil
	}

	chart.Timeline = buildTimeline(bodyLines, header, sink)
	chart.Objects = buildBody(bodyLines, chart.Timeline, anims, sink)
	chart.Diagnostics = sink.sorted()
	return chart, nil
}
