package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"karolbroda.com/prompter/internal/cache"
	"karolbroda.com/prompter/internal/config"
	"karolbroda.com/prompter/internal/logging"
	"karolbroda.com/prompter/internal/lyrics"
)

var (
	// global flags
	fontPath     string
	syncOffset   float64
	leadIn       float64
	fps          int
	pixelScale   int
	mprisService string
	lrclibURL    string
	logFile      string
	debug        bool
	hideHeader   bool
	noCache      bool
	accent       string
)

var rootCmd = &cobra.Command{
	Use:   "prompter",
	Short: "timed lyrics prompter for the terminal",
	Long: `prompter shows synchronized lyrics from an .lrc file against its own clock.
the current line fades into the next while a progress bar counts down to it.
an mpris media player can be attached to follow play, pause and stop.

when run without a subcommand, it starts the interactive viewer.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runViewer(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&fontPath, "font", "", `ttf font for lyric text ("none" draws no text)`)
	flags.Float64VarP(&syncOffset, "sync-offset", "s", 0, "initial sync offset in seconds, positive shows lyrics earlier")
	flags.Float64Var(&leadIn, "lead-in", config.DefaultLeadIn, "seconds lyrics are shown ahead of the clock")
	flags.IntVar(&fps, "fps", config.DefaultFPS, "frames per second")
	flags.IntVar(&pixelScale, "pixel-scale", config.DefaultPixelScale, "canvas pixels per terminal cell")
	flags.StringVarP(&mprisService, "mpris-service", "m", "", "mpris player to drive (e.g., org.mpris.MediaPlayer2.spotify)")
	flags.StringVar(&lrclibURL, "lrclib-url", "", "custom lrclib api url")
	flags.StringVar(&logFile, "log-file", "", "append logs to this file")
	flags.BoolVar(&debug, "debug", false, "log at debug level")
	flags.BoolVarP(&hideHeader, "hide-header", "H", false, "hide the status line and key hints")
	flags.BoolVar(&noCache, "no-cache", false, "disable cache reads (always fetch fresh)")
	flags.StringVar(&accent, "accent", "", `accent colour for the next line and hints ("#RRGGBB")`)
}

// loadConfig reads the environment and lets flags the user actually set win.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()
	changed := func(name string) bool {
		f := cmd.Flag(name)
		return f != nil && f.Changed
	}

	if changed("font") {
		cfg.FontPath = fontPath
	}
	if changed("sync-offset") {
		cfg.SyncOffset = syncOffset
	}
	if changed("lead-in") {
		cfg.LeadIn = leadIn
	}
	if changed("fps") {
		cfg.FPS = fps
	}
	if changed("pixel-scale") {
		cfg.PixelScale = pixelScale
	}
	if mprisService != "" {
		cfg.MprisService = mprisService
	}
	if lrclibURL != "" {
		cfg.LrclibURL = lrclibURL
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if changed("debug") {
		cfg.Debug = debug
	}
	if changed("hide-header") {
		cfg.HideHeader = hideHeader
	}
	if accent != "" {
		cfg.Accent = accent
	}

	cfg.Normalize()
	return cfg
}

// openLog installs the file logger; a failure only costs the log.
func openLog(cfg *config.Config) io.Closer {
	closer, err := logging.Open(cfg.LogFile, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return io.NopCloser(nil)
	}
	return closer
}

// accentOverride returns the configured accent, warning and ignoring a
// malformed one.
func accentOverride(cfg *config.Config) *uint32 {
	c, ok, err := cfg.AccentColor()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using the theme accent\n", err)
		return nil
	}
	if !ok {
		return nil
	}
	return &c
}

func newLyricsClient(cfg *config.Config) *lyrics.Client {
	client := lyrics.NewClient(cfg.LrclibURL, config.HTTPTimeoutSeconds*time.Second, cache.OpenDefault())
	client.SkipCacheRead = noCache
	return client
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
