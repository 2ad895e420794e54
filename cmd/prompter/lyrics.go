package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"karolbroda.com/prompter/internal/lyrics"
)

var (
	// flags for lyrics fetch
	fetchOutput string
)

var lyricsCmd = &cobra.Command{
	Use:   "lyrics",
	Short: "lyrics fetching and checking",
	Long:  `fetch lyrics from lrclib into the cache or an .lrc file, and check how an .lrc file parses.`,
}

var lyricsFetchCmd = &cobra.Command{
	Use:   "fetch <artist> <title>",
	Short: "fetch and cache lyrics",
	Long:  `fetch lyrics from lrclib.net into the local cache, optionally writing the synced lyrics to an .lrc file.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		logCloser := openLog(cfg)
		defer logCloser.Close()

		artist, title := args[0], args[1]
		fmt.Printf("fetching: %s - %s\n", artist, title)

		client := newLyricsClient(cfg)
		payload, err := client.Fetch(context.Background(), &lyrics.TrackParams{Title: title, Artist: artist})
		if err != nil {
			return fmt.Errorf("failed to fetch lyrics: %w", err)
		}

		fmt.Printf("found: %s - %s\n", payload.ArtistName, payload.TrackName)
		if payload.AlbumName != "" {
			fmt.Printf("  album:        %s\n", payload.AlbumName)
		}
		if payload.Duration > 0 {
			fmt.Printf("  duration:     %.0fs\n", payload.Duration)
		}
		fmt.Printf("  instrumental: %v\n", payload.Instrumental)

		if payload.SyncedLyrics == "" {
			fmt.Println("  synced lines: none (only plain lyrics, nothing to prompt)")
			return nil
		}
		lines, skipped := lyrics.ParseSynced(payload.SyncedLyrics)
		fmt.Printf("  synced lines: %d", len(lines))
		if len(skipped) > 0 {
			fmt.Printf(" (%d skipped)", len(skipped))
		}
		fmt.Println()

		if fetchOutput != "" {
			if err := os.WriteFile(fetchOutput, []byte(payload.SyncedLyrics+"\n"), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", fetchOutput, err)
			}
			fmt.Printf("\nwrote %s\n", fetchOutput)
		}

		return nil
	},
}

var lyricsPreviewCmd = &cobra.Command{
	Use:   "preview <file.lrc | artist title>",
	Short: "print timed lyrics with timestamps",
	Long: `print the lines the prompter would show, in file order, with their timestamps.
with one argument the .lrc file is parsed and malformed lines are reported; with two the lyrics
are fetched from the cache or lrclib.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		logCloser := openLog(cfg)
		defer logCloser.Close()

		var raw, name string
		if len(args) == 1 {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read lyrics: %w", err)
			}
			raw, name = string(data), args[0]
		} else {
			client := newLyricsClient(cfg)
			payload, err := client.Fetch(context.Background(), &lyrics.TrackParams{Artist: args[0], Title: args[1]})
			if err != nil {
				return fmt.Errorf("lyrics not found: %w", err)
			}
			if payload.SyncedLyrics == "" {
				return lyrics.ErrNoSyncedLyrics
			}
			raw, name = payload.SyncedLyrics, payload.ArtistName+" - "+payload.TrackName
		}

		lines, skipped := lyrics.ParseSynced(raw)
		fmt.Printf("\n%s\n", name)
		fmt.Println(strings.Repeat("─", 60))

		for _, line := range lines {
			fmt.Printf("[%s] %s\n", formatTimestamp(line.Time), line.Text)
		}

		if len(skipped) > 0 {
			fmt.Printf("\nskipped %d lines:\n", len(skipped))
			for _, skip := range skipped {
				fmt.Printf("  %d: %q (%v)\n", skip.Number, skip.Raw, skip.Reason)
			}
		}
		if len(lines) == 0 {
			return fmt.Errorf("%s: no timed lyric lines found", name)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(lyricsCmd)

	lyricsCmd.AddCommand(lyricsFetchCmd)
	lyricsCmd.AddCommand(lyricsPreviewCmd)

	lyricsFetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "write synced lyrics to this .lrc file")
}

func formatTimestamp(seconds float64) string {
	minutes := int(seconds) / 60
	secs := seconds - float64(minutes*60)
	return fmt.Sprintf("%d:%05.2f", minutes, secs)
}
