package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"karolbroda.com/prompter/internal/config"
	"karolbroda.com/prompter/internal/glyph"
	"karolbroda.com/prompter/internal/logging"
	"karolbroda.com/prompter/internal/lyrics"
	"karolbroda.com/prompter/internal/player"
	"karolbroda.com/prompter/internal/scene"
	"karolbroda.com/prompter/internal/session"
	"karolbroda.com/prompter/internal/terminal"
	"karolbroda.com/prompter/internal/track"
	"karolbroda.com/prompter/internal/ui"
)

var (
	// flags for run
	lrcPath     string
	trackArtist string
	trackTitle  string
	artworkURL  string
)

var runCmd = &cobra.Command{
	Use:   "run [file.lrc]",
	Short: "start the interactive lyrics prompter",
	Long: `starts the terminal prompter. lyrics come from an .lrc file, or from lrclib
when --artist and --title are given or an attached player changes track.

keys: p play, space pause, s stop, f fullscreen, r reload, +/- offset, 0 reset, q quit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runViewer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		cmd.Flags().StringVarP(&lrcPath, "lrc", "l", "", "lyrics file to load")
		cmd.Flags().StringVar(&trackArtist, "artist", "", "artist to fetch lyrics for")
		cmd.Flags().StringVar(&trackTitle, "title", "", "title to fetch lyrics for")
		cmd.Flags().StringVar(&artworkURL, "artwork", "", "cover image path or url to theme the display")
	}
}

func runViewer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		<-sigChan
		cancel()
		terminal.Reset()
		os.Exit(0)
	}()

	defer terminal.Reset()

	cfg := loadConfig(cmd)
	logCloser := openLog(cfg)
	defer logCloser.Close()
	log := logging.Logger()

	path := lrcPath
	if len(args) == 1 {
		path = args[0]
	}

	metrics, err := glyph.Load(cfg.FontPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, lyrics will not be drawn\n", err)
		log.Warn("font unavailable", "err", err)
	}

	screen := ui.NewAltScreen()
	sess := session.New(
		session.WithLogger(log),
		session.WithLeadIn(cfg.LeadIn),
		session.WithOffset(cfg.SyncOffset),
		session.WithFullscreen(screen),
	)

	if path != "" {
		skipped, err := sess.LoadLyricsFile(path)
		if err != nil {
			return err
		}
		if len(skipped) > 0 {
			fmt.Fprintf(os.Stderr, "skipped %d malformed lines in %s\n", len(skipped), path)
		}
	}

	var watcher *player.Watcher
	if cfg.MprisService != "" {
		watcher = attachPlayer(sess, cfg)
		if watcher != nil {
			defer watcher.Close()
		}
	}

	var initial *track.Info
	if trackArtist != "" || trackTitle != "" || artworkURL != "" {
		initial = &track.Info{Artist: trackArtist, Title: trackTitle, ArtworkURL: artworkURL}
	}

	var client *lyrics.Client
	if watcher != nil || initial.IsValid() {
		client = newLyricsClient(cfg)
	}

	model := ui.NewModel(ui.ModelConfig{
		Session: sess,
		Painter: scene.Painter{
			Metrics:    metrics,
			Theme:      scene.DefaultTheme(),
			HideChrome: cfg.HideHeader,
		},
		Accent:        accentOverride(cfg),
		Client:        client,
		Watcher:       watcher,
		Screen:        screen,
		TermCaps:      terminal.DetectCapabilities(),
		InitialTrack:  initial,
		FrameInterval: cfg.FrameInterval(),
		PixelScale:    cfg.PixelScale,
		Logger:        log,
	})

	p := tea.NewProgram(model, tea.WithMouseCellMotion())

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running bubble tea: %w", err)
	}

	return nil
}

// attachPlayer binds the configured mpris player as the session's audio
// sink and starts watching it. Failures leave the prompter running on its
// own clock.
func attachPlayer(sess *session.Session, cfg *config.Config) *player.Watcher {
	log := logging.Logger()

	mpris, err := player.Connect(cfg.MprisService)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: no audio player: %v\n", err)
		log.Warn("mpris connect failed", "service", cfg.MprisService, "err", err)
		return nil
	}
	sess.AttachSink(mpris)

	watcher, err := player.NewWatcher(mpris.Conn(), mpris.Service())
	if err == nil {
		err = watcher.Start()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not set up dbus signals: %v\n", err)
		log.Warn("mpris watch failed", "err", err)
		return nil
	}
	return watcher
}
