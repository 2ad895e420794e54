// Package scene paints one lyric frame: the status line, previous, current
// and next lines with their fades, the progress bar with its countdown and
// the transport hint row.
package scene

import (
	"fmt"

	"karolbroda.com/prompter/internal/artwork"
	"karolbroda.com/prompter/internal/canvas"
	"karolbroda.com/prompter/internal/colors"
	"karolbroda.com/prompter/internal/glyph"
	"karolbroda.com/prompter/internal/layout"
	"karolbroda.com/prompter/internal/lyrics"
	"karolbroda.com/prompter/internal/session"
)

const (
	statusTop  = 8
	statusSize = 14.0
	contentTop = 40
	barArea    = 90
	nextGap    = 30

	// MainHeightRatio bounds the current line's block height.
	MainHeightRatio = 0.3
	smallRatio      = 0.32
	minSmallSize    = 20.0

	barHeight     = 4
	barFromBottom = 70
	countdownSize = 18.0

	buttonWidth      = 90
	buttonHeight     = 26
	buttonGap        = 8
	buttonFromBottom = 38
	buttonTextSize   = 13.0

	currMinAlpha = 120
	nextMaxAlpha = 180
	nextMinAlpha = 40

	// minBarLightness keeps a dark cover's primary visible against BarBg.
	minBarLightness = 35.0
)

type Theme struct {
	Background uint32
	Text       uint32
	Dim        uint32
	Accent     uint32
	Button     uint32
	BarBg      uint32
	BarFg      uint32
	Loaded     uint32
}

func DefaultTheme() Theme {
	return Theme{
		Background: 0x121212,
		Text:       0xf0f0f0,
		Dim:        0x606060,
		Accent:     0x909090,
		Button:     0x1e1e1e,
		BarBg:      0x252525,
		BarFg:      0x707070,
		Loaded:     0x4a9f4a,
	}
}

// ThemeFromPalette tints the default theme with cover art colours. The
// background and dim text stay dark so the fades keep their contrast.
func ThemeFromPalette(p *artwork.Palette) Theme {
	t := DefaultTheme()
	if p == nil {
		return t
	}
	t.Text = colors.Mix(t.Text, p.Primary, 0.15)
	t.Accent = colors.Mix(t.Accent, p.Accent, 0.6)
	t.BarFg = p.Primary
	if colors.Lightness(t.BarFg) < minBarLightness {
		t.BarFg = colors.Mix(t.BarFg, t.Text, 0.5)
	}
	return t
}

// Painter renders frames with a fixed font and theme.
type Painter struct {
	Metrics glyph.Metrics
	Theme   Theme
	// HideChrome drops the status line and the hint row.
	HideChrome bool
}

// Layout records where Render placed things.
type Layout struct {
	Frame     lyrics.Frame
	MainSize  float64
	SmallSize float64
	MainTop   int
	NextTop   int
	BarLeft   int
	BarTop    int
	BarWidth  int
	BarFilled int
}

// Render clears buf and paints the frame for v.
func (p Painter) Render(buf *canvas.Buffer, v session.View) Layout {
	theme := p.Theme
	metrics := p.Metrics
	if metrics == nil {
		metrics = glyph.Estimator{}
	}

	w, h := buf.Width, buf.Height
	buf.Fill(theme.Background)

	if !p.HideChrome {
		canvas.DrawTextCentered(buf, statusText(v), statusTop, statusSize, theme.Dim, metrics)
	}

	frame := v.Frame()
	fit := layout.Fit(frame.Curr, float64(w)*canvas.TextWidthRatio, float64(h)*MainHeightRatio, metrics)
	l := Layout{
		Frame:     frame,
		MainSize:  fit.Size,
		SmallSize: max(fit.Size*smallRatio, minSmallSize),
	}

	avail := h - contentTop - barArea
	canvas.DrawTextCentered(buf, frame.Prev, contentTop, l.SmallSize, theme.Dim, metrics)

	currColor, nextColor := LineColors(theme, frame.Progress)
	l.MainTop = contentTop + avail/3
	canvas.DrawTextCentered(buf, frame.Curr, l.MainTop, l.MainSize, currColor, metrics)

	l.NextTop = l.MainTop + int(fit.Height()) + nextGap
	canvas.DrawTextCentered(buf, frame.Next, l.NextTop, l.SmallSize, nextColor, metrics)

	l.BarWidth = int(float64(w) * 0.5)
	l.BarLeft = (w - l.BarWidth) / 2
	l.BarTop = h - barFromBottom
	canvas.DrawRect(buf, l.BarLeft, l.BarTop, l.BarWidth, barHeight, theme.BarBg)
	l.BarFilled = int(float64(l.BarWidth) * frame.Progress)
	if l.BarFilled > 0 {
		canvas.DrawRect(buf, l.BarLeft, l.BarTop, l.BarFilled, barHeight, theme.BarFg)
	}

	countdown := fmt.Sprintf("%.1fs", frame.Countdown)
	canvas.DrawTextCentered(buf, countdown, l.BarTop+10, countdownSize, theme.Dim, metrics)

	if !p.HideChrome {
		p.drawButtons(buf, v, metrics)
	}
	return l
}

// LineColors returns the current and next line colours for a transition
// progress. The current line fades out but never below currMinAlpha; the
// next line fades in from nextMinAlpha.
func LineColors(theme Theme, progress float64) (curr, next uint32) {
	currAlpha := max(uint8((1-progress)*255), currMinAlpha)
	nextAlpha := max(uint8(progress*nextMaxAlpha), nextMinAlpha)
	return canvas.Blend(theme.Text, theme.Background, currAlpha),
		canvas.Blend(theme.Accent, theme.Background, nextAlpha)
}

func statusText(v session.View) string {
	lrc := v.LyricsName
	if lrc == "" {
		lrc = "No lyrics loaded"
	}
	audio := v.SinkName
	if !v.HasSink {
		audio = "No audio (optional)"
	}
	return fmt.Sprintf("LRC: %s  |  Audio: %s", lrc, audio)
}

type button struct {
	label string
	color uint32
}

func (p Painter) buttons(v session.View) []button {
	theme := p.Theme
	loaded := func(ok bool) uint32 {
		if ok {
			return theme.Loaded
		}
		return theme.Accent
	}

	playLabel := "Play"
	if !v.HasSink && v.HasLyrics() {
		playLabel = "Lyrics"
	}

	return []button{
		{"[r] LRC", loaded(v.HasLyrics())},
		{"Audio", loaded(v.HasSink)},
		{"[p] " + playLabel, theme.Accent},
		{"[␣] Pause", theme.Accent},
		{"[s] Stop", theme.Accent},
		{"[f] Full", theme.Accent},
	}
}

func (p Painter) drawButtons(buf *canvas.Buffer, v session.View, metrics glyph.Metrics) {
	btns := p.buttons(v)
	total := len(btns)*buttonWidth + (len(btns)-1)*buttonGap
	left := (buf.Width - total) / 2
	top := buf.Height - buttonFromBottom

	for _, b := range btns {
		canvas.DrawRect(buf, left, top, buttonWidth, buttonHeight, p.Theme.Button)
		tw := metrics.Width(b.label, buttonTextSize)
		tx := left + int((buttonWidth-tw)/2)
		ty := top + (buttonHeight-int(buttonTextSize))/2
		canvas.DrawText(buf, b.label, tx, ty, buttonTextSize, b.color, metrics)
		left += buttonWidth + buttonGap
	}
}
