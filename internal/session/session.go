// Package session owns the mutable state of one prompter run: the loaded
// timeline, the playback clock, the optional audio sink and display flags.
// All mutation goes through Session methods; renderers only ever see the
// read-only View.
//
// A Session is not safe for concurrent use. The frame driver calls it from
// its single update loop.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"karolbroda.com/prompter/internal/clock"
	"karolbroda.com/prompter/internal/logging"
	"karolbroda.com/prompter/internal/lyrics"
)

// DefaultLeadIn shows lyrics slightly ahead of the clock.
const DefaultLeadIn = 0.5

var (
	ErrNoTimedLines = errors.New("no timed lyric lines found")
	ErrNoLyricsFile = errors.New("no lyrics file loaded")
)

// Sink is an audio output that follows the clock's transport commands.
type Sink interface {
	Name() string
	Play() error
	Pause() error
	Stop() error
}

// Fullscreen switches the display in and out of fullscreen.
type Fullscreen interface {
	SetFullscreen(on bool) error
}

type nopFullscreen struct{}

func (nopFullscreen) SetFullscreen(bool) error { return nil }

type Session struct {
	timeline   *lyrics.Timeline
	lyricsName string
	lyricsPath string

	clock  *clock.Clock
	sink   Sink
	leadIn float64
	offset float64

	fullscreen bool
	screen     Fullscreen

	log *slog.Logger
}

type Option func(*Session)

func WithClock(c *clock.Clock) Option {
	return func(s *Session) { s.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

func WithLeadIn(seconds float64) Option {
	return func(s *Session) { s.leadIn = seconds }
}

func WithOffset(seconds float64) Option {
	return func(s *Session) { s.offset = seconds }
}

func WithFullscreen(f Fullscreen) Option {
	return func(s *Session) { s.screen = f }
}

func New(opts ...Option) *Session {
	s := &Session{
		timeline: lyrics.NewTimeline(nil),
		leadIn:   DefaultLeadIn,
		screen:   nopFullscreen{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.log == nil {
		s.log = logging.Logger()
	}
	return s
}

// LoadLyrics parses raw LRC text and replaces the timeline. Malformed lines
// are skipped and returned. When nothing parses the current timeline is
// kept and ErrNoTimedLines is returned. A successful load stops the clock.
func (s *Session) LoadLyrics(name, raw string) ([]lyrics.SkippedLine, error) {
	lines, skipped := lyrics.ParseSynced(raw)
	for _, skip := range skipped {
		s.log.Debug("skipped lyric line", "source", name, "line", skip.Number, "reason", skip.Reason)
	}
	if len(lines) == 0 {
		return skipped, fmt.Errorf("%s: %w", name, ErrNoTimedLines)
	}

	s.SetTimeline(name, lyrics.NewTimeline(lines))
	return skipped, nil
}

// LoadLyricsFile reads an .lrc file and remembers its path for Reload.
func (s *Session) LoadLyricsFile(path string) ([]lyrics.SkippedLine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lyrics: %w", err)
	}

	skipped, err := s.LoadLyrics(filepath.Base(path), string(data))
	if err != nil {
		return skipped, err
	}
	s.lyricsPath = path
	return skipped, nil
}

// Reload re-reads the last file given to LoadLyricsFile.
func (s *Session) Reload() ([]lyrics.SkippedLine, error) {
	if s.lyricsPath == "" {
		return nil, ErrNoLyricsFile
	}
	return s.LoadLyricsFile(s.lyricsPath)
}

// SetTimeline installs an already parsed timeline, for lyrics that did not
// come from a file.
func (s *Session) SetTimeline(name string, tl *lyrics.Timeline) {
	if tl == nil {
		tl = lyrics.NewTimeline(nil)
	}
	s.timeline = tl
	s.lyricsName = name
	s.lyricsPath = ""
	s.clock.Stop()
	s.log.Info("lyrics loaded", "source", name, "lines", tl.Len())
}

func (s *Session) AttachSink(sink Sink) {
	s.sink = sink
	if sink != nil {
		s.log.Info("audio sink attached", "sink", sink.Name())
	}
}

// Play starts or resumes the clock and the sink. Without lyrics and without
// a sink there is nothing to play and Play does nothing. A sink error is
// returned after the clock has started; lyrics keep running on their own.
func (s *Session) Play() error {
	if s.timeline.Len() == 0 && s.sink == nil {
		return nil
	}
	if s.clock.State() == clock.Running {
		return nil
	}

	s.clock.Play()
	s.log.Info("play", "elapsed", s.clock.Elapsed())
	return s.mirror("play", Sink.Play)
}

func (s *Session) Pause() error {
	if s.clock.State() != clock.Running {
		return nil
	}

	s.clock.Pause()
	s.log.Info("pause", "elapsed", s.clock.Elapsed())
	return s.mirror("pause", Sink.Pause)
}

// TogglePause pauses a running session and resumes any other.
func (s *Session) TogglePause() error {
	if s.clock.State() == clock.Running {
		return s.Pause()
	}
	return s.Play()
}

func (s *Session) Stop() error {
	s.clock.Stop()
	s.log.Info("stop")
	return s.mirror("stop", Sink.Stop)
}

// Follow applies a play state reported by the sink itself to the clock
// without echoing it back to the sink.
func (s *Session) Follow(playing bool) {
	switch {
	case playing && s.clock.State() != clock.Running:
		s.clock.Play()
		s.log.Info("following sink", "state", "playing")
	case !playing && s.clock.State() == clock.Running:
		s.clock.Pause()
		s.log.Info("following sink", "state", "paused")
	}
}

func (s *Session) mirror(action string, op func(Sink) error) error {
	if s.sink == nil {
		return nil
	}
	if err := op(s.sink); err != nil {
		s.log.Warn("audio sink failed", "action", action, "sink", s.sink.Name(), "err", err)
		return fmt.Errorf("audio %s: %w", action, err)
	}
	return nil
}

// AdjustOffset shifts the lyrics against the clock; positive shows them
// earlier.
func (s *Session) AdjustOffset(delta float64) {
	s.offset += delta
	s.log.Debug("sync offset", "offset", s.offset)
}

func (s *Session) ResetOffset() {
	s.offset = 0
}

func (s *Session) ToggleFullscreen() error {
	next := !s.fullscreen
	if err := s.screen.SetFullscreen(next); err != nil {
		return fmt.Errorf("fullscreen: %w", err)
	}
	s.fullscreen = next
	return nil
}

// View is a snapshot of the session for one frame.
type View struct {
	Timeline   *lyrics.Timeline
	Time       float64
	Elapsed    float64
	State      clock.State
	LyricsName string
	SinkName   string
	HasSink    bool
	Offset     float64
	Fullscreen bool
}

func (s *Session) View() View {
	elapsed := s.clock.Elapsed()
	v := View{
		Timeline:   s.timeline,
		Time:       elapsed + s.leadIn + s.offset,
		Elapsed:    elapsed,
		State:      s.clock.State(),
		LyricsName: s.lyricsName,
		Offset:     s.offset,
		Fullscreen: s.fullscreen,
	}
	if s.sink != nil {
		v.HasSink = true
		v.SinkName = s.sink.Name()
	}
	return v
}

func (v View) HasLyrics() bool { return v.Timeline.Len() > 0 }

// Frame resolves the lyric lines for the view's display time.
func (v View) Frame() lyrics.Frame {
	return lyrics.Resolve(v.Timeline, v.Time)
}
