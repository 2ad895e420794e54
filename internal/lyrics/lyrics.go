package lyrics

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// NoLyricsText is shown when no timeline has been loaded.
	NoLyricsText = "Load an LRC file to start"
	// WaitingText is shown before the first line while the lead-in has not started.
	WaitingText = "♪ ♪ ♪"

	leadInSeconds = 1.0
)

var (
	errNoBracket   = errors.New("line does not start with a timestamp")
	errNoClose     = errors.New("timestamp is not closed")
	errEmptyText   = errors.New("line has no text")
	errTimeFormat  = errors.New("timestamp is not mm:ss")
	errNegativeSec = errors.New("negative time not allowed")
)

type Line struct {
	Time float64
	Text string
}

// SkippedLine describes an input line that ParseSynced ignored.
type SkippedLine struct {
	Number int
	Raw    string
	Reason error
}

func (s SkippedLine) Error() string {
	return fmt.Sprintf("line %d skipped: %v", s.Number, s.Reason)
}

func (s SkippedLine) Unwrap() error {
	return s.Reason
}

// ParseSynced reads LRC text. Malformed lines are reported in the second
// return value and never stop the parse. Order follows the input.
func ParseSynced(raw string) ([]Line, []SkippedLine) {
	if raw == "" {
		return nil, nil
	}

	rawLines := strings.Split(raw, "\n")
	result := make([]Line, 0, len(rawLines))
	var skipped []SkippedLine

	for i, rawLine := range rawLines {
		trimmed := strings.TrimSpace(rawLine)
		if trimmed == "" {
			continue
		}

		line, err := parseLine(trimmed)
		if err != nil {
			skipped = append(skipped, SkippedLine{Number: i + 1, Raw: trimmed, Reason: err})
			continue
		}

		result = append(result, line)
	}

	return result, skipped
}

func parseLine(line string) (Line, error) {
	if !strings.HasPrefix(line, "[") {
		return Line{}, errNoBracket
	}

	endIndex := strings.Index(line, "]")
	if endIndex < 0 {
		return Line{}, errNoClose
	}

	seconds, err := parseLrcTime(line[1:endIndex])
	if err != nil {
		return Line{}, err
	}

	text := strings.TrimSpace(line[endIndex+1:])
	if text == "" {
		return Line{}, errEmptyText
	}

	return Line{Time: seconds, Text: text}, nil
}

func parseLrcTime(raw string) (float64, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", errTimeFormat, raw)
	}

	minutes, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: minutes %q", errTimeFormat, parts[0])
	}
	seconds, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: seconds %q", errTimeFormat, parts[1])
	}

	total := minutes*60 + seconds
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, fmt.Errorf("%w: %q is not a finite time", errTimeFormat, raw)
	}
	if total < 0 {
		return 0, errNegativeSec
	}

	return total, nil
}

// Timeline is an immutable, source-ordered sequence of lyric lines.
type Timeline struct {
	lines []Line
}

func NewTimeline(lines []Line) *Timeline {
	copied := make([]Line, len(lines))
	copy(copied, lines)
	return &Timeline{lines: copied}
}

func (t *Timeline) Len() int {
	if t == nil {
		return 0
	}
	return len(t.lines)
}

func (t *Timeline) Line(i int) (Line, bool) {
	if t == nil || i < 0 || i >= len(t.lines) {
		return Line{}, false
	}
	return t.lines[i], true
}

func (t *Timeline) Lines() []Line {
	if t == nil {
		return nil
	}
	out := make([]Line, len(t.lines))
	copy(out, t.lines)
	return out
}

type LookupKind int

const (
	Empty LookupKind = iota
	BeforeFirst
	Active
)

func (k LookupKind) String() string {
	switch k {
	case Empty:
		return "empty"
	case BeforeFirst:
		return "before-first"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("LookupKind(%d)", int(k))
	}
}

// Lookup is the result of Locate. First and TimeToFirst are set for
// BeforeFirst, Index for Active.
type Lookup struct {
	Kind        LookupKind
	Index       int
	First       Line
	TimeToFirst float64
}

// Locate returns the last line whose timestamp is not after t. The scan runs
// backward, so among equal timestamps the highest index wins.
func (t *Timeline) Locate(at float64) Lookup {
	if t.Len() == 0 {
		return Lookup{Kind: Empty, Index: -1}
	}

	first := t.lines[0]
	if at < first.Time {
		return Lookup{Kind: BeforeFirst, Index: -1, First: first, TimeToFirst: first.Time - at}
	}

	for i := len(t.lines) - 1; i >= 0; i-- {
		if t.lines[i].Time <= at {
			return Lookup{Kind: Active, Index: i}
		}
	}

	// unreachable: lines[0] already matched above
	return Lookup{Kind: Active, Index: 0}
}

// Frame is everything the renderer needs about the lyrics at one instant.
type Frame struct {
	Lookup    Lookup
	Prev      string
	Curr      string
	Next      string
	Countdown float64
	Progress  float64
}

func Resolve(t *Timeline, at float64) Frame {
	lookup := t.Locate(at)
	frame := Frame{Lookup: lookup}

	switch lookup.Kind {
	case Empty:
		frame.Curr = NoLyricsText

	case BeforeFirst:
		timeToFirst := lookup.TimeToFirst
		if timeToFirst < 0 {
			timeToFirst = 0
		}
		frame.Countdown = timeToFirst
		if timeToFirst <= leadInSeconds {
			frame.Curr = lookup.First.Text
			if second, ok := t.Line(1); ok {
				frame.Next = second.Text
			}
		} else {
			frame.Curr = WaitingText
			frame.Next = lookup.First.Text
		}

	case Active:
		i := lookup.Index
		cur := t.lines[i]
		frame.Curr = cur.Text
		if prev, ok := t.Line(i - 1); ok {
			frame.Prev = prev.Text
		}
		if next, ok := t.Line(i + 1); ok {
			frame.Next = next.Text
			frame.Countdown = next.Time - at
			if frame.Countdown < 0 {
				frame.Countdown = 0
			}
			frame.Progress = progressBetween(cur.Time, next.Time, at)
		}
	}

	return frame
}

func progressBetween(start, end, at float64) float64 {
	span := end - start
	if span <= 0 {
		return 1.0
	}
	return clamp((at-start)/span, 0, 1)
}

func clamp(val float64, min float64, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
