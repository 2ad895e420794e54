package main

import (
	"fmt"

	figure "github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"karolbroda.com/prompter/internal/artwork"
	"karolbroda.com/prompter/internal/colors"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the version banner",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(banner())
		fmt.Printf("prompter %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// banner renders the name in ascii art, shaded across the default palette.
func banner() string {
	lines := figure.NewFigure("prompter", "small", true).Slicify()

	width := 0
	for _, line := range lines {
		width = max(width, len([]rune(line)))
	}

	palette := artwork.DefaultPalette()
	gradient := colors.Gradient(palette.Primary, palette.Secondary, max(width, 2))

	var out string
	for i, line := range lines {
		if i > 0 {
			out += "\n"
		}
		out += colors.RenderGradientText(line, gradient, true)
	}
	return out
}
