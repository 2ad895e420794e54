package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"karolbroda.com/prompter/internal/cache"
)

var (
	// flags for cache list
	cacheSortBy string
	// flags for cache clear
	cacheConfirm bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "manage the lyrics cache",
	Long:  `manage lyrics fetched from lrclib, including viewing statistics, listing entries, and clearing the cache.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		diskCache := cache.OpenDefault()

		count, sizeBytes, err := diskCache.Stats()
		if err != nil {
			return fmt.Errorf("failed to get cache stats: %w", err)
		}

		location := diskCache.Dir()
		if location == "" {
			location = "(memory only)"
		}

		fmt.Println("cache statistics:")
		fmt.Printf("  location: %s\n", location)
		fmt.Printf("  entries:  %d\n", count)
		fmt.Printf("  size:     %s\n", formatBytes(sizeBytes))
		return nil
	},
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "list all cached songs",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := cache.OpenDefault().ListAll()
		if err != nil {
			return fmt.Errorf("failed to list cache: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("cache is empty")
			return nil
		}

		sortCacheEntries(entries, cacheSortBy)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ARTIST\tTITLE\tSYNCED\tCACHED")
		for _, entry := range entries {
			synced := "-"
			if entry.SyncedLyrics != "" {
				synced = "yes"
			}
			cacheDate := time.Unix(entry.CreatedAt, 0).Format("2006-01-02")
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", entry.ArtistName, entry.TrackName, synced, cacheDate)
		}
		w.Flush()

		fmt.Printf("\ntotal: %d songs\n", len(entries))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "clear all cached entries",
	Long:  `remove all cached lyrics. use --confirm to skip the confirmation prompt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cacheConfirm {
			fmt.Print("are you sure you want to clear all cache? (y/n): ")
			var response string
			fmt.Scanln(&response)
			if r := strings.ToLower(response); r != "y" && r != "yes" {
				fmt.Println("cancelled")
				return nil
			}
		}

		if err := cache.OpenDefault().Clear(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}

		fmt.Println("cache cleared successfully")
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "remove expired cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		pruned, err := cache.OpenDefault().Prune()
		if err != nil {
			return fmt.Errorf("failed to prune cache: %w", err)
		}

		fmt.Printf("removed %d expired entries\n", pruned)
		return nil
	},
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <artist> <title>",
	Short: "remove specific song from cache",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		artist, title := args[0], args[1]
		diskCache := cache.OpenDefault()

		if _, err := diskCache.Get(artist, title); err != nil {
			if suggestions := findSimilarCachedSongs(diskCache, artist, title); len(suggestions) > 0 {
				fmt.Fprintf(os.Stderr, "did you mean one of these?\n")
				for _, s := range suggestions {
					fmt.Fprintf(os.Stderr, "  %s - %s\n", s.ArtistName, s.TrackName)
				}
			}
			return fmt.Errorf("song not found in cache: %w", err)
		}

		if err := diskCache.Delete(artist, title); err != nil {
			return fmt.Errorf("failed to delete from cache: %w", err)
		}

		fmt.Printf("deleted '%s - %s' from cache\n", artist, title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheDeleteCmd)

	cacheListCmd.Flags().StringVar(&cacheSortBy, "sort", "date", "sort by: date, artist, title")
	cacheClearCmd.Flags().BoolVar(&cacheConfirm, "confirm", false, "skip confirmation prompt")
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func sortCacheEntries(entries []*cache.LyricEntry, sortBy string) {
	switch sortBy {
	case "artist":
		sort.SliceStable(entries, func(i, j int) bool {
			return strings.ToLower(entries[i].ArtistName) < strings.ToLower(entries[j].ArtistName)
		})
	case "title":
		sort.SliceStable(entries, func(i, j int) bool {
			return strings.ToLower(entries[i].TrackName) < strings.ToLower(entries[j].TrackName)
		})
	default:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].CreatedAt > entries[j].CreatedAt
		})
	}
}

// findSimilarCachedSongs returns up to five entries whose artist and title
// contain, or are contained in, the ones asked for.
func findSimilarCachedSongs(diskCache *cache.DiskCache, artist, title string) []*cache.LyricEntry {
	entries, err := diskCache.ListAll()
	if err != nil {
		return nil
	}

	artist, title = strings.ToLower(artist), strings.ToLower(title)
	similar := func(a, b string) bool {
		return strings.Contains(a, b) || strings.Contains(b, a)
	}

	var matches []*cache.LyricEntry
	for _, entry := range entries {
		if similar(strings.ToLower(entry.ArtistName), artist) && similar(strings.ToLower(entry.TrackName), title) {
			matches = append(matches, entry)
		}
	}
	if len(matches) > 5 {
		matches = matches[:5]
	}
	return matches
}
