package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "responseleak",
	Short: "🔎 Scan HTTP response bodies and arbitrary buffers for leaked secrets 🔎",
	Long:  "Responseleak scans byte buffers (HTTP response bodies, files, stdin) for leaked credentials using fixed patterns plus a randomness analysis of assignment-like values.",
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(NewScanCmd())
	rootCmd.AddCommand(NewPatternsCmd())
	rootCmd.AddCommand(NewVersionCmd())

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
