package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version information - set via ldflags during build
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			log.Info().Str("version", Version).Str("commit", Commit).Str("date", Date).Msg("responseleak")
		},
	}
}
