// Package parser reads scenario scripts into events.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/suderio/scenario-engine/internal/value"
)

var lineParser = Build()

// ScriptLine is one non-empty line of a script.
type ScriptLine struct {
	Number int
	Text   string
	Event  value.Event
}

// ParseLine parses a single line. Blank and comment-only lines yield an empty
// event.
func ParseLine(input string) (value.Event, error) {
	line, err := lineParser.ParseString("", input)
	if err != nil {
		return nil, MapError(input, err)
	}
	return line.Event(), nil
}

// ParseScript parses every line of r, skipping blank and comment-only lines.
// The first malformed line stops parsing.
func ParseScript(r io.Reader) ([]ScriptLine, error) {
	var out []ScriptLine
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		ev, err := ParseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		if len(ev) == 0 {
			continue
		}
		out = append(out, ScriptLine{Number: n, Text: text, Event: ev})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return out, nil
}
