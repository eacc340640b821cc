// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/logger"
)

var (
	configPath string // directory holding main.toml
	cfg        config.Config

	rootCmd = &cobra.Command{
		Use:   "cineverse",
		Short: "CineVerse Captions is a community site for movies, subtitles and articles",
		Long: `CineVerse Captions is a community site for movies, subtitles and articles
with paid ad placements, subscriptions, exams and groups.`,
		Args:          cobra.OnlyValidArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			if cfg, err = config.ReadConfig(configPath); err != nil {
				return err
			}

			return logger.Init(cfg.Log)
		},
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory containing main.toml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
