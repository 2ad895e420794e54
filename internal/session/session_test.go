package session

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"karolbroda.com/prompter/internal/clock"
	"karolbroda.com/prompter/internal/lyrics"
)

type fakeSink struct {
	calls []string
	err   error
}

func (f *fakeSink) Name() string { return "fake" }

func (f *fakeSink) Play() error { return f.record("play") }

func (f *fakeSink) Pause() error { return f.record("pause") }

func (f *fakeSink) Stop() error { return f.record("stop") }

func (f *fakeSink) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

type fakeScreen struct {
	states []bool
	err    error
}

func (f *fakeScreen) SetFullscreen(on bool) error {
	if f.err != nil {
		return f.err
	}
	f.states = append(f.states, on)
	return nil
}

type fakeTime struct{ now time.Time }

func newFakeTime() *fakeTime {
	return &fakeTime{now: time.Unix(1_700_000_000, 0)}
}

func (f *fakeTime) Now() time.Time { return f.now }

func (f *fakeTime) Advance(sec float64) {
	f.now = f.now.Add(time.Duration(sec * float64(time.Second)))
}

func (f *fakeTime) clock() *clock.Clock {
	return clock.New(clock.WithNow(f.Now))
}

func lrc(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

const song = "[00:01]Hello\n[00:05]World\n[00:09]Again"

func TestPlayWithoutLyricsOrSinkIsNoop(t *testing.T) {
	ft := newFakeTime()
	s := New(WithClock(ft.clock()))

	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if got := s.View().State; got != clock.Stopped {
		t.Fatalf("state = %v, want stopped", got)
	}
}

func TestLyricsOnlyPlayback(t *testing.T) {
	ft := newFakeTime()
	s := New(WithClock(ft.clock()), WithLeadIn(0.5))
	if _, err := s.LoadLyrics("song.lrc", song); err != nil {
		t.Fatalf("LoadLyrics: %v", err)
	}

	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	ft.Advance(4.5)

	v := s.View()
	if v.State != clock.Running || v.Elapsed != 4.5 {
		t.Fatalf("view = %+v", v)
	}
	// 4.5 s plus half a second of lead-in reaches the second line
	if f := v.Frame(); f.Curr != "World" || f.Prev != "Hello" {
		t.Fatalf("frame = %+v", f)
	}
}

func TestTransportMirrorsToSink(t *testing.T) {
	ft := newFakeTime()
	sink := &fakeSink{}
	s := New(WithClock(ft.clock()))
	s.AttachSink(sink)

	steps := []func() error{s.Play, s.Play, s.Pause, s.Pause, s.TogglePause, s.TogglePause, s.Stop}
	for _, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("transport step: %v", err)
		}
	}

	want := []string{"play", "pause", "play", "pause", "stop"}
	if !reflect.DeepEqual(sink.calls, want) {
		t.Fatalf("sink calls = %v, want %v", sink.calls, want)
	}
	if v := s.View(); !v.HasSink || v.SinkName != "fake" || v.State != clock.Stopped {
		t.Fatalf("view = %+v", v)
	}
}

func TestSinkErrorKeepsClockRunning(t *testing.T) {
	ft := newFakeTime()
	boom := errors.New("bus gone")
	s := New(WithClock(ft.clock()))
	s.AttachSink(&fakeSink{err: boom})

	if err := s.Play(); !errors.Is(err, boom) {
		t.Fatalf("Play error = %v, want %v", err, boom)
	}
	if s.View().State != clock.Running {
		t.Fatal("clock did not start")
	}
}

func TestPauseResumeKeepsOffset(t *testing.T) {
	ft := newFakeTime()
	s := New(WithClock(ft.clock()), WithLeadIn(0))
	if _, err := s.LoadLyrics("x", song); err != nil {
		t.Fatalf("LoadLyrics: %v", err)
	}

	_ = s.Play()
	ft.Advance(2)
	_ = s.Pause()
	ft.Advance(10)
	_ = s.Play()
	if got := s.View().Elapsed; got != 2 {
		t.Fatalf("elapsed after resume = %v, want 2", got)
	}
	ft.Advance(1)
	if got := s.View().Elapsed; got != 3 {
		t.Fatalf("elapsed = %v, want 3", got)
	}
}

func TestFollowDoesNotEcho(t *testing.T) {
	ft := newFakeTime()
	sink := &fakeSink{}
	s := New(WithClock(ft.clock()))
	s.AttachSink(sink)

	s.Follow(true)
	if s.View().State != clock.Running {
		t.Fatal("Follow(true) did not start the clock")
	}
	s.Follow(false)
	if s.View().State != clock.Paused {
		t.Fatal("Follow(false) did not pause the clock")
	}
	if len(sink.calls) != 0 {
		t.Fatalf("Follow echoed to sink: %v", sink.calls)
	}
}

func TestOffsetShiftsDisplayTime(t *testing.T) {
	s := New(WithClock(newFakeTime().clock()), WithLeadIn(0.5), WithOffset(1))
	s.AdjustOffset(0.25)
	s.AdjustOffset(-0.5)
	if v := s.View(); v.Offset != 0.75 || v.Time != 1.25 {
		t.Fatalf("view = %+v", v)
	}
	s.ResetOffset()
	if v := s.View(); v.Offset != 0 || v.Time != 0.5 {
		t.Fatalf("after reset = %+v", v)
	}
}

func TestLoadLyricsKeepsTimelineOnFailure(t *testing.T) {
	s := New()
	if _, err := s.LoadLyrics("good.lrc", song); err != nil {
		t.Fatalf("LoadLyrics: %v", err)
	}

	skipped, err := s.LoadLyrics("bad.lrc", lrc("no stamps", "[xx]nope"))
	if !errors.Is(err, ErrNoTimedLines) {
		t.Fatalf("err = %v, want ErrNoTimedLines", err)
	}
	if len(skipped) != 2 {
		t.Fatalf("skipped = %d, want 2", len(skipped))
	}
	if v := s.View(); v.LyricsName != "good.lrc" || v.Timeline.Len() != 3 {
		t.Fatalf("view after failed load = %+v", v)
	}
}

func TestLoadStopsClock(t *testing.T) {
	ft := newFakeTime()
	s := New(WithClock(ft.clock()))
	_, _ = s.LoadLyrics("a", song)
	_ = s.Play()
	ft.Advance(3)

	_, _ = s.LoadLyrics("b", song)
	if v := s.View(); v.State != clock.Stopped || v.Elapsed != 0 {
		t.Fatalf("view after reload = %+v", v)
	}
}

func TestLoadLyricsFileAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.lrc")
	if err := os.WriteFile(path, []byte("[00:01]one"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := New()
	if _, err := s.Reload(); !errors.Is(err, ErrNoLyricsFile) {
		t.Fatalf("Reload without file = %v", err)
	}
	if _, err := s.LoadLyricsFile(path); err != nil {
		t.Fatalf("LoadLyricsFile: %v", err)
	}
	if v := s.View(); v.LyricsName != "track.lrc" || v.Timeline.Len() != 1 {
		t.Fatalf("view = %+v", v)
	}

	if err := os.WriteFile(path, []byte("[00:01]one\n[00:02]two"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := s.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if s.View().Timeline.Len() != 2 {
		t.Fatal("Reload did not pick up the new file")
	}

	s.SetTimeline("lrclib", lyrics.NewTimeline([]lyrics.Line{{Time: 1, Text: "x"}}))
	if _, err := s.Reload(); !errors.Is(err, ErrNoLyricsFile) {
		t.Fatalf("Reload after SetTimeline = %v", err)
	}
}

func TestToggleFullscreen(t *testing.T) {
	screen := &fakeScreen{}
	s := New(WithFullscreen(screen))

	for i := 0; i < 3; i++ {
		if err := s.ToggleFullscreen(); err != nil {
			t.Fatalf("ToggleFullscreen: %v", err)
		}
	}
	if !reflect.DeepEqual(screen.states, []bool{true, false, true}) || !s.View().Fullscreen {
		t.Fatalf("states = %v, fullscreen = %v", screen.states, s.View().Fullscreen)
	}

	screen.err = errors.New("unsupported")
	if err := s.ToggleFullscreen(); err == nil || !s.View().Fullscreen {
		t.Fatal("failed toggle changed the flag")
	}
}

func TestEmptyViewFrame(t *testing.T) {
	if f := New().View().Frame(); f.Curr != lyrics.NoLyricsText {
		t.Fatalf("frame = %+v", f)
	}
}
