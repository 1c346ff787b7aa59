package cmd

import (
	"context"
	"fmt"
	"log"

	"wavefm/config"
	"wavefm/core/catalog"

	"github.com/spf13/cobra"
)

var (
	catalogGenre string
	catalogLimit int
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Probe the external catalog sources",
	Long:  `Fetch a page of tracks from each configured catalog source (Jamendo, Deezer) and print what came back. Useful for checking API credentials and connectivity.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		sources := []catalog.Source{
			catalog.NewJamendoSource(cfg.JamendoAPIURL, cfg.JamendoClientID, cfg.CatalogTimeout),
			catalog.NewDeezerSource(cfg.DeezerAPIURL, cfg.CatalogTimeout),
		}

		for _, source := range sources {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.CatalogTimeout)
			songs, err := source.Fetch(ctx, catalogGenre, catalogLimit)
			cancel()
			if err != nil {
				log.Printf("%s: fetch failed: %v", source.Name(), err)
				continue
			}
			fmt.Printf("%s: %d track(s)\n", source.Name(), len(songs))
			for _, song := range songs {
				fmt.Printf("  %s - %s (%s, %ds)\n", song.Title, song.Artist, song.Genre, song.Duration)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().StringVarP(&catalogGenre, "genre", "g", "", "genre to query the sources for")
	catalogCmd.Flags().IntVarP(&catalogLimit, "limit", "l", 10, "number of tracks to request per source")
}
