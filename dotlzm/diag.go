package dotlzm

import (
	"fmt"
	"sort"
	"sync"
)

type Severity uint8

const (
	RecoverableSyntax Severity = iota
	RecoverableReference
	FatalResolution
	FatalStructural
)

func (s Severity) String() string {
	switch s {
	case RecoverableSyntax:
		return "recoverable-syntax"
	case RecoverableReference:
		return "recoverable-reference"
	case FatalResolution:
		return "fatal-resolution"
	default:
		return "fatal-structural"
	}
}

// Diagnostic is one recorded problem. Line is 1-based; Section names the
// section that was active when the problem was found.
type Diagnostic struct {
	Line     int
	Section  string
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d [%s] %s: %s", d.Line, d.Section, d.Severity, d.Message)
}

// diagSink accumulates diagnostics from all stages. The table builders append
// concurrently; entries are ordered by source line before they are handed to
// the caller.
type diagSink struct {
	mu      sync.Mutex
	entries []Diagnostic
}

func (s *diagSink) add(sev Severity, line int, section, format string, args ...any) {
	s.mu.Lock()
	s.entries = append(s.entries, Diagnostic{
		Line:     line,
		Section:  section,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	})
	s.mu.Unlock()
}

func (s *diagSink) sorted() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.entries))
	copy(out, s.entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Message < out[j].Message
	})
	return out
}
