package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"karolbroda.com/prompter/internal/artwork"
	"karolbroda.com/prompter/internal/lyrics"
	"karolbroda.com/prompter/internal/player"
	"karolbroda.com/prompter/internal/scene"
	"karolbroda.com/prompter/internal/track"
)

const (
	offsetStep   = 0.1
	fetchTimeout = 15 * time.Second
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		return m, m.tickCmd()

	case PlayerEventMsg:
		return m.handlePlayerEvent(msg.Event)

	case LyricsFetchedMsg:
		return m.handleLyricsFetched(msg), nil

	case ArtworkFetchedMsg:
		if msg.Err != nil {
			m.log.Debug("artwork unavailable", "err", msg.Err)
			return m, nil
		}
		m.painter.Theme = scene.ThemeFromPalette(msg.Palette)
		if m.accent != nil {
			m.painter.Theme.Accent = *m.accent
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var err error

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "p":
		err = m.session.Play()

	case " ":
		err = m.session.TogglePause()

	case "s":
		err = m.session.Stop()

	case "f":
		err = m.session.ToggleFullscreen()
		if err == nil {
			return m, m.screen.take()
		}

	case "r":
		skipped, reloadErr := m.session.Reload()
		err = reloadErr
		if err == nil {
			m.setNotice(reloadNotice(len(skipped)))
		}

	case "+", "=":
		m.session.AdjustOffset(offsetStep)

	case "-", "_":
		m.session.AdjustOffset(-offsetStep)

	case "0":
		m.session.ResetOffset()
	}

	if err != nil {
		m.log.Warn("key action failed", "key", msg.String(), "err", err)
		m.setNotice(err.Error())
	}

	return m, nil
}

func reloadNotice(skipped int) string {
	if skipped == 0 {
		return "lyrics reloaded"
	}
	return fmt.Sprintf("lyrics reloaded, %d lines skipped", skipped)
}

func (m Model) handlePlayerEvent(event player.Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.listenForPlayerEvents()}

	switch event.Kind {
	case player.EventPlaybackChanged:
		m.playerPlaying = event.Playing
		m.session.Follow(event.Playing)

	case player.EventTrackChanged:
		m.log.Info("track changed", "track", event.Track.Label())
		if m.client != nil && event.Track.IsValid() {
			cmds = append(cmds, fetchLyricsCmd(m.client, event.Track))
		}
		if event.Track != nil && event.Track.ArtworkURL != "" {
			cmds = append(cmds, fetchArtworkCmd(event.Track.ArtworkURL))
		}

	case player.EventSeeked:
		m.log.Debug("player seeked", "position", event.Position)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleLyricsFetched(msg LyricsFetchedMsg) Model {
	if msg.Err != nil {
		m.log.Warn("lyrics fetch failed", "track", msg.Name, "err", msg.Err)
		if errors.Is(msg.Err, lyrics.ErrNoSyncedLyrics) {
			m.setNotice("no synced lyrics for " + msg.Name)
		} else {
			m.setNotice("lyrics fetch failed")
		}
		return m
	}

	m.session.SetTimeline(msg.Name, msg.Timeline)
	// loading stops the clock; a playing player keeps the new lyrics moving
	if m.playerPlaying {
		m.session.Follow(true)
	}
	if msg.Skipped > 0 {
		m.setNotice(fmt.Sprintf("%d lyric lines skipped", msg.Skipped))
	}
	return m
}

func fetchLyricsCmd(client *lyrics.Client, info *track.Info) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		tl, skipped, err := client.FetchTimeline(ctx, info.Params())
		return LyricsFetchedMsg{
			Name:     info.Label(),
			Timeline: tl,
			Skipped:  len(skipped),
			Err:      err,
		}
	}
}

func fetchArtworkCmd(source string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		img, err := artwork.Load(ctx, source)
		if err != nil {
			return ArtworkFetchedMsg{Err: err}
		}
		return ArtworkFetchedMsg{Palette: artwork.ExtractPalette(img)}
	}
}
