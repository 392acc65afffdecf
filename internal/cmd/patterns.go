package cmd

import (
	"fmt"

	"github.com/CompassSecurity/responseleak/pkg/config"
	"github.com/CompassSecurity/responseleak/pkg/format"
	"github.com/CompassSecurity/responseleak/pkg/scanner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	patternsURL  string
	patternsFile string
)

func NewPatternsCmd() *cobra.Command {
	patternsCmd := &cobra.Command{
		Use:   "patterns",
		Short: "Inspect and update the secret pattern set",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the active patterns with their compiled expressions",
		Run:   ListPatterns,
	}
	listCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML settings/patterns file (built-in defaults when omitted)")

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Download a pattern file and verify it compiles",
		Run:   UpdatePatterns,
	}
	updateCmd.Flags().StringVarP(&patternsURL, "url", "u", "", "URL of the pattern file to download")
	updateCmd.Flags().StringVarP(&patternsFile, "out", "f", "patterns.yml", "Destination path for the downloaded pattern file")
	if err := updateCmd.MarkFlagRequired("url"); err != nil {
		log.Error().Msg("Unable to require url flag: " + err.Error())
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Run:   ShowConfig,
	}
	showCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML settings/patterns file (built-in defaults when omitted)")

	patternsCmd.AddCommand(listCmd)
	patternsCmd.AddCommand(updateCmd)
	patternsCmd.AddCommand(showCmd)
	return patternsCmd
}

func ShowConfig(cmd *cobra.Command, args []string) {
	cfg := loadScanConfig()

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marshalling configuration")
	}

	pretty, err := format.PrettyPrintYAML(string(raw))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed rendering configuration")
	}
	fmt.Print(pretty)
}

func ListPatterns(cmd *cobra.Command, args []string) {
	cfg := loadScanConfig()

	compiled, errs := scanner.CompileAll(cfg.Patterns, cfg.Settings.GenericSecretMinLength, cfg.Settings.GenericSecretMaxLength)
	for _, cp := range compiled {
		log.Info().Str("name", cp.Spec.Name).Bool("generic", cp.Generic).Str("regex", cp.Regex.String()).Msg("Pattern")
	}

	log.Info().Int("active", len(compiled)).Int("failed", len(errs)).Msg("Pattern set")
}

func UpdatePatterns(cmd *cobra.Command, args []string) {
	if err := scanner.DownloadSpecs(patternsURL, patternsFile); err != nil {
		log.Fatal().Err(err).Str("url", patternsURL).Msg("Failed downloading pattern file")
	}

	specs, err := scanner.LoadSpecs(patternsFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", patternsFile).Msg("Downloaded pattern file is not parseable")
	}

	settings := config.DefaultSettings()
	compiled, errs := scanner.CompileAll(specs, settings.GenericSecretMinLength, settings.GenericSecretMaxLength)
	log.Info().Int("active", len(compiled)).Int("failed", len(errs)).Str("path", patternsFile).Msg("Pattern file updated")
}
