// Package ui is the terminal frame driver: a bubbletea program that ticks
// the session at a fixed rate, paints each frame with the scene painter and
// prints it as half blocks or kitty graphics.
package ui

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"karolbroda.com/prompter/internal/artwork"
	"karolbroda.com/prompter/internal/canvas"
	"karolbroda.com/prompter/internal/config"
	"karolbroda.com/prompter/internal/logging"
	"karolbroda.com/prompter/internal/lyrics"
	"karolbroda.com/prompter/internal/player"
	"karolbroda.com/prompter/internal/scene"
	"karolbroda.com/prompter/internal/session"
	"karolbroda.com/prompter/internal/terminal"
	"karolbroda.com/prompter/internal/track"
)

const (
	minBufferSide = 200
	// windowedRows is the share of the terminal used outside fullscreen.
	windowedRows = 0.5
	minRows      = 8
	noticeTTL    = 3 * time.Second
)

type TickMsg time.Time

type PlayerEventMsg struct {
	Event player.Event
}

type LyricsFetchedMsg struct {
	Name     string
	Timeline *lyrics.Timeline
	Skipped  int
	Err      error
}

type ArtworkFetchedMsg struct {
	Palette *artwork.Palette
	Err     error
}

// AltScreen is the terminal fullscreen strategy: fullscreen is the
// alternate screen, windowed is an inline frame below the prompt.
type AltScreen struct {
	pending tea.Cmd
}

func NewAltScreen() *AltScreen {
	return &AltScreen{}
}

func (a *AltScreen) SetFullscreen(on bool) error {
	if on {
		a.pending = tea.EnterAltScreen
	} else {
		a.pending = tea.ExitAltScreen
	}
	return nil
}

func (a *AltScreen) take() tea.Cmd {
	cmd := a.pending
	a.pending = nil
	return cmd
}

type Model struct {
	session  *session.Session
	painter  scene.Painter
	client   *lyrics.Client
	watcher  *player.Watcher
	screen   *AltScreen
	termCaps *terminal.Capabilities
	initial  *track.Info
	accent   *uint32

	// playerPlaying is the last playback state the watched player reported.
	playerPlaying bool

	interval   time.Duration
	pixelScale int
	buf        *canvas.Buffer
	log        *slog.Logger

	width       int
	height      int
	notice      string
	noticeUntil time.Time
	quitting    bool
}

type ModelConfig struct {
	Session *session.Session
	Painter scene.Painter
	// Client fetches lyrics for tracks the watched player switches to. Nil
	// disables fetching.
	Client   *lyrics.Client
	Watcher  *player.Watcher
	Screen   *AltScreen
	// Accent, when set, survives re-theming from cover art.
	Accent   *uint32
	TermCaps *terminal.Capabilities
	// InitialTrack is fetched once at startup when set.
	InitialTrack  *track.Info
	FrameInterval time.Duration
	PixelScale    int
	Logger        *slog.Logger
}

func NewModel(cfg ModelConfig) Model {
	m := Model{
		session:    cfg.Session,
		painter:    cfg.Painter,
		client:     cfg.Client,
		watcher:    cfg.Watcher,
		screen:     cfg.Screen,
		termCaps:   cfg.TermCaps,
		initial:    cfg.InitialTrack,
		accent:     cfg.Accent,
		interval:   cfg.FrameInterval,
		pixelScale: cfg.PixelScale,
		log:        cfg.Logger,
		buf:        canvas.NewBuffer(0, 0, cfg.Painter.Theme.Background),
	}

	if m.session == nil {
		m.session = session.New()
	}
	if m.screen == nil {
		m.screen = NewAltScreen()
	}
	if m.termCaps == nil {
		m.termCaps = &terminal.Capabilities{SupportsRGB: true}
	}
	if m.interval <= 0 {
		m.interval = time.Second / config.DefaultFPS
	}
	if m.pixelScale < 1 {
		m.pixelScale = config.DefaultPixelScale
	}
	if m.log == nil {
		m.log = logging.Logger()
	}
	if m.accent != nil {
		m.painter.Theme.Accent = *m.accent
	}

	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.tickCmd(),
		m.listenForPlayerEvents(),
	}
	if m.initial.IsValid() && m.client != nil {
		cmds = append(cmds, fetchLyricsCmd(m.client, m.initial))
	}
	if m.initial != nil && m.initial.ArtworkURL != "" {
		cmds = append(cmds, fetchArtworkCmd(m.initial.ArtworkURL))
	}
	return tea.Batch(cmds...)
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) listenForPlayerEvents() tea.Cmd {
	if m.watcher == nil {
		return nil
	}

	return func() tea.Msg {
		event, ok := <-m.watcher.Events()
		if !ok {
			return nil
		}
		return PlayerEventMsg{Event: event}
	}
}

func (m *Model) setNotice(text string) {
	m.notice = text
	m.noticeUntil = time.Now().Add(noticeTTL)
}

func (m Model) Notice() string {
	if m.notice == "" || time.Now().After(m.noticeUntil) {
		return ""
	}
	return m.notice
}

func (m Model) Session() *session.Session { return m.session }
func (m Model) Width() int                 { return m.width }
func (m Model) Height() int                { return m.height }
func (m Model) IsQuitting() bool           { return m.quitting }
