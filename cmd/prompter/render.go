package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/nfnt/resize"
	"github.com/spf13/cobra"

	"karolbroda.com/prompter/internal/artwork"
	"karolbroda.com/prompter/internal/canvas"
	"karolbroda.com/prompter/internal/clock"
	"karolbroda.com/prompter/internal/glyph"
	"karolbroda.com/prompter/internal/logging"
	"karolbroda.com/prompter/internal/scene"
	"karolbroda.com/prompter/internal/session"
)

const (
	defaultRenderWidth  = 1024
	defaultRenderHeight = 600
)

var (
	// flags for render
	renderAt         float64
	renderWidth      int
	renderHeight     int
	renderOutput     string
	renderThumbWidth uint
	renderArtwork    string
)

var renderCmd = &cobra.Command{
	Use:   "render <file.lrc>",
	Short: "render one frame to a png",
	Long: `render the prompter frame for a point on the clock into a png file, without
a terminal. useful for checking timing and layout of an .lrc file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		logCloser := openLog(cfg)
		defer logCloser.Close()

		metrics, err := glyph.Load(cfg.FontPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v, lyrics will not be drawn\n", err)
		}

		sess := session.New(
			session.WithLogger(logging.Logger()),
			session.WithLeadIn(cfg.LeadIn),
			session.WithOffset(cfg.SyncOffset),
		)
		skipped, err := sess.LoadLyricsFile(args[0])
		if err != nil {
			return err
		}
		if len(skipped) > 0 {
			fmt.Fprintf(os.Stderr, "skipped %d malformed lines\n", len(skipped))
		}

		theme := scene.DefaultTheme()
		if renderArtwork != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			img, err := artwork.Load(ctx, renderArtwork)
			cancel()
			if err != nil {
				return fmt.Errorf("failed to load artwork: %w", err)
			}
			theme = scene.ThemeFromPalette(artwork.ExtractPalette(img))
		}
		if c := accentOverride(cfg); c != nil {
			theme.Accent = *c
		}

		view := frozenView(sess.View(), renderAt, cfg.LeadIn, cfg.SyncOffset)
		painter := scene.Painter{Metrics: metrics, Theme: theme, HideChrome: cfg.HideHeader}

		buf := canvas.NewBuffer(renderWidth, renderHeight, theme.Background)
		layout := painter.Render(buf, view)

		var out image.Image = buf.Image()
		if renderThumbWidth > 0 {
			out = resize.Resize(renderThumbWidth, 0, out, resize.Lanczos3)
		}

		if err := writePNG(renderOutput, out); err != nil {
			return err
		}

		frame := layout.Frame
		fmt.Printf("%s at %s\n", renderOutput, formatTimestamp(renderAt))
		fmt.Printf("  current: %s\n", frame.Curr)
		if frame.Next != "" {
			fmt.Printf("  next:    %s (in %.1fs)\n", frame.Next, frame.Countdown)
		}
		fmt.Printf("  text:    %.0fpx, progress %.0f%%\n", layout.MainSize, frame.Progress*100)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().Float64Var(&renderAt, "at", 0, "clock position in seconds")
	renderCmd.Flags().IntVar(&renderWidth, "width", defaultRenderWidth, "frame width in pixels")
	renderCmd.Flags().IntVar(&renderHeight, "height", defaultRenderHeight, "frame height in pixels")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "frame.png", "png file to write")
	renderCmd.Flags().UintVar(&renderThumbWidth, "thumb-width", 0, "scale the png down to this width")
	renderCmd.Flags().StringVar(&renderArtwork, "artwork", "", "cover image path or url to theme the frame")
}

// frozenView places a stopped session's view at elapsed seconds of a
// running clock.
func frozenView(v session.View, elapsed, leadIn, offset float64) session.View {
	v.Elapsed = elapsed
	v.Time = elapsed + leadIn + offset
	v.State = clock.Running
	return v
}

func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return file.Close()
}
