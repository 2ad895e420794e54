package scene

import (
	"testing"

	"karolbroda.com/prompter/internal/artwork"
	"karolbroda.com/prompter/internal/canvas"
	"karolbroda.com/prompter/internal/colors"
	"karolbroda.com/prompter/internal/glyph"
	"karolbroda.com/prompter/internal/lyrics"
	"karolbroda.com/prompter/internal/session"
)

func testView(at float64) session.View {
	tl := lyrics.NewTimeline([]lyrics.Line{{Time: 1, Text: "Hello"}, {Time: 5, Text: "World"}})
	return session.View{Timeline: tl, Time: at, LyricsName: "song.lrc"}
}

func TestRenderLayout(t *testing.T) {
	buf := canvas.NewBuffer(1024, 600, 0)
	p := Painter{Metrics: glyph.Estimator{}, Theme: DefaultTheme()}

	l := p.Render(buf, testView(3))

	if l.Frame.Curr != "Hello" || l.Frame.Progress != 0.5 {
		t.Fatalf("frame = %+v", l.Frame)
	}
	// "Hello" is 2.5*size wide; the 180px height budget caps it at 160
	want := Layout{
		Frame:     l.Frame,
		MainSize:  160,
		SmallSize: 160 * 0.32,
		MainTop:   196,
		NextTop:   402,
		BarLeft:   256,
		BarTop:    530,
		BarWidth:  512,
		BarFilled: 256,
	}
	if l != want {
		t.Fatalf("layout = %+v, want %+v", l, want)
	}
}

func TestRenderProgressBar(t *testing.T) {
	buf := canvas.NewBuffer(1024, 600, 0)
	theme := DefaultTheme()
	p := Painter{Metrics: glyph.Estimator{}, Theme: theme, HideChrome: true}
	p.Render(buf, testView(3))

	tests := []struct {
		x, y int
		want uint32
	}{
		{256, 530, theme.BarFg},
		{511, 533, theme.BarFg},
		{512, 530, theme.BarBg},
		{767, 533, theme.BarBg},
		{768, 530, theme.Background},
		{255, 530, theme.Background},
		{300, 534, theme.Background},
		{10, 580, theme.Background},
	}
	for _, tt := range tests {
		if got, _ := buf.At(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %06x, want %06x", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRenderButtonsUnlessHidden(t *testing.T) {
	theme := DefaultTheme()
	v := testView(0)

	buf := canvas.NewBuffer(1024, 600, 0)
	Painter{Metrics: glyph.Estimator{}, Theme: theme}.Render(buf, v)
	// first button starts at (1024-580)/2 = 222, top 562
	if got, _ := buf.At(222, 562); got != theme.Button {
		t.Fatalf("button pixel = %06x, want %06x", got, theme.Button)
	}

	Painter{Metrics: glyph.Estimator{}, Theme: theme, HideChrome: true}.Render(buf, v)
	if got, _ := buf.At(222, 562); got != theme.Background {
		t.Fatalf("hidden chrome left %06x", got)
	}
}

func TestRenderSmallBufferStaysInBounds(t *testing.T) {
	metrics, err := glyph.Load("")
	if err != nil {
		t.Fatalf("glyph.Load: %v", err)
	}
	p := Painter{Metrics: metrics, Theme: DefaultTheme()}
	for _, size := range [][2]int{{200, 200}, {1, 1}, {0, 0}, {3000, 140}} {
		buf := canvas.NewBuffer(size[0], size[1], 0)
		p.Render(buf, testView(4.9))
		if len(buf.Pix) != size[0]*size[1] {
			t.Fatalf("buffer %v resized to %d", size, len(buf.Pix))
		}
	}
}

func TestRenderDrawsLyricText(t *testing.T) {
	metrics, err := glyph.Load("")
	if err != nil {
		t.Fatalf("glyph.Load: %v", err)
	}
	theme := DefaultTheme()
	buf := canvas.NewBuffer(800, 480, 0)
	l := Painter{Metrics: metrics, Theme: theme, HideChrome: true}.Render(buf, testView(1))

	lit := 0
	for y := l.MainTop; y < l.NextTop && y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			if px, _ := buf.At(x, y); px != theme.Background {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Fatal("no text pixels in the current line band")
	}
}

func TestLineColorsFloors(t *testing.T) {
	theme := DefaultTheme()

	curr, next := LineColors(theme, 0)
	if curr != theme.Text {
		t.Errorf("current at start = %06x, want full text colour", curr)
	}
	if want := canvas.Blend(theme.Accent, theme.Background, 40); next != want {
		t.Errorf("next at start = %06x, want %06x", next, want)
	}

	curr, next = LineColors(theme, 1)
	if want := canvas.Blend(theme.Text, theme.Background, 120); curr != want {
		t.Errorf("current at end = %06x, want %06x", curr, want)
	}
	if want := canvas.Blend(theme.Accent, theme.Background, 180); next != want {
		t.Errorf("next at end = %06x, want %06x", next, want)
	}
}

func TestStatusText(t *testing.T) {
	if got := statusText(session.View{}); got != "LRC: No lyrics loaded  |  Audio: No audio (optional)" {
		t.Fatalf("empty status = %q", got)
	}
	v := session.View{LyricsName: "a.lrc", SinkName: "mpv", HasSink: true}
	if got := statusText(v); got != "LRC: a.lrc  |  Audio: mpv" {
		t.Fatalf("status = %q", got)
	}
}

func TestThemeFromPalette(t *testing.T) {
	if ThemeFromPalette(nil) != DefaultTheme() {
		t.Fatal("nil palette changed the theme")
	}
	theme := ThemeFromPalette(artwork.DefaultPalette())
	if theme.Background != DefaultTheme().Background || theme.BarFg != artwork.DefaultPalette().Primary {
		t.Fatalf("theme = %+v", theme)
	}
}

func TestThemeFromDarkPaletteLiftsBar(t *testing.T) {
	dark := &artwork.Palette{Primary: 0x101018, Accent: 0x202030, Secondary: 0x181010}
	theme := ThemeFromPalette(dark)
	if theme.BarFg == dark.Primary {
		t.Fatal("dark primary used for the bar as is")
	}
	if got := colors.Lightness(theme.BarFg); got < colors.Lightness(dark.Primary) {
		t.Fatalf("bar lightness fell to %v", got)
	}
}
