package main

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"karolbroda.com/prompter/internal/colors"
	"karolbroda.com/prompter/internal/player"
)

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "mpris player utilities",
	Long:  `discover the mpris media players the prompter can drive as its audio output.`,
}

var playerListCmd = &cobra.Command{
	Use:   "list",
	Short: "list available mpris players",
	RunE: func(cmd *cobra.Command, args []string) error {
		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer bus.Close()

		players, err := player.ListPlayers(bus)
		if err != nil {
			return err
		}

		if len(players) == 0 {
			fmt.Println("no mpris players found")
			fmt.Println("\ncheck if your music player is running and supports mpris")
			return nil
		}

		fmt.Printf("found %d mpris player(s):\n\n", len(players))
		for _, p := range players {
			if p.Identity != "" {
				fmt.Printf("  %s (%s)\n", p.Service, p.Identity)
			} else {
				fmt.Printf("  %s\n", p.Service)
			}
		}

		fmt.Println("\nuse --mpris-service flag to specify which player to use")
		return nil
	},
}

var playerCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "show the player's current track",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		if cfg.MprisService == "" {
			return fmt.Errorf("%w: pass --mpris-service or set MPRIS_SERVICE", player.ErrNoService)
		}

		mpris, err := player.Connect(cfg.MprisService)
		if err != nil {
			return fmt.Errorf("failed to connect to player: %w", err)
		}
		defer mpris.Close()

		fmt.Printf("player:   %s\n", mpris.Name())

		info, err := mpris.CurrentTrack()
		if err != nil {
			fmt.Println("no track currently playing")
			return nil
		}

		fmt.Printf("title:    %s\n", info.Title)
		fmt.Printf("artist:   %s\n", info.Artist)
		if info.Album != "" {
			fmt.Printf("album:    %s\n", info.Album)
		}
		if info.DurationSecs > 0 {
			fmt.Printf("duration: %s\n", colors.FormatTime(float64(info.DurationSecs)))
		}
		if info.ArtworkURL != "" {
			fmt.Printf("artwork:  %s\n", info.ArtworkURL)
		}

		state := "paused"
		if playing, err := mpris.Playing(); err == nil && playing {
			state = "playing"
		}
		fmt.Printf("state:    %s\n", state)
		if pos, err := mpris.Position(); err == nil && pos > 0 {
			fmt.Printf("position: %s\n", colors.FormatTime(pos))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(playerCmd)

	playerCmd.AddCommand(playerListCmd)
	playerCmd.AddCommand(playerCurrentCmd)
}
