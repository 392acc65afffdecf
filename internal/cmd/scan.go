package cmd

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/CompassSecurity/responseleak/pkg/config"
	"github.com/CompassSecurity/responseleak/pkg/logging"
	"github.com/CompassSecurity/responseleak/pkg/scanner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/wandb/parallel"
)

var (
	configPath   string
	countersPath string
	originLabel  string
	maxWorkers   int
	jsonOutput   bool
	watchConfig  bool
	verbose      bool
)

func NewScanCmd() *cobra.Command {
	scanCmd := &cobra.Command{
		Use:   "scan [files...]",
		Short: "Scan files (or stdin with \"-\") for leaked secrets",
		Run:   Scan,
		Args:  cobra.MinimumNArgs(1),
	}

	scanCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML settings/patterns file (built-in defaults when omitted)")
	scanCmd.Flags().StringVar(&countersPath, "counters", "", "JSON file to restore and persist per-origin duplicate counters")
	scanCmd.Flags().StringVarP(&originLabel, "origin", "o", "", "Origin label for deduplication (defaults to file://<path> per file)")
	scanCmd.Flags().IntVarP(&maxWorkers, "workers", "w", 4, "Number of buffers scanned concurrently")
	scanCmd.Flags().BoolVar(&jsonOutput, "json", false, "Machine-readable JSON output with hit-level findings")
	scanCmd.Flags().BoolVar(&watchConfig, "watch", false, "Reload the config file on change and rescan remaining files with it")
	scanCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose Logging")

	return scanCmd
}

func Scan(cmd *cobra.Command, args []string) {
	logging.SetLogLevel(verbose)
	if jsonOutput {
		logging.EnableJSONOutput()
	}

	cfg := loadScanConfig()
	store := scanner.NewStore()

	if countersPath != "" {
		if err := loadCounters(countersPath, store); err != nil && !os.IsNotExist(err) {
			log.Fatal().Err(err).Str("path", countersPath).Msg("Failed restoring counters file")
		}
	}

	active, err := scanner.NewScanner(cfg, store)
	if err != nil {
		log.Fatal().Err(err).Msg("Configuration is unusable, refusing to scan")
	}

	var scannerMu sync.RWMutex
	if watchConfig && configPath != "" {
		watcher, err := config.NewWatcher(configPath, func(fresh *config.Config) {
			rebuilt, err := scanner.NewScanner(fresh, store)
			if err != nil {
				log.Error().Err(err).Msg("Changed config is unusable, keeping previous scanner")
				return
			}
			scannerMu.Lock()
			active = rebuilt
			scannerMu.Unlock()
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed watching config file")
		}
		defer func() { _ = watcher.Close() }()
	}

	ctx := context.Background()
	group := parallel.Collect[int](parallel.Limited(ctx, maxWorkers))

	for _, path := range args {
		group.Go(func(ctx context.Context) (int, error) {
			buffer, origin, err := readBuffer(path)
			if err != nil {
				log.Error().Err(err).Str("path", path).Msg("Failed reading input, skipping it")
				return 0, nil
			}

			scannerMu.RLock()
			current := active
			scannerMu.RUnlock()

			findings := current.Scan(buffer, origin)
			scanner.Report(findings, origin)
			return len(findings), nil
		})
	}

	counts, err := group.Wait()
	if err != nil {
		log.Error().Stack().Err(err).Msg("Failed waiting for parallel buffer scans")
	}

	total := 0
	for _, count := range counts {
		total += count
	}
	log.Info().Int("findings", total).Int("buffers", len(args)).Msg("Scan finished")

	if countersPath != "" {
		if err := saveCounters(countersPath, store); err != nil {
			log.Error().Err(err).Str("path", countersPath).Msg("Failed persisting counters file")
		}
	}
}

func loadScanConfig() *config.Config {
	if configPath == "" {
		return config.Default()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("Failed loading config file")
	}
	return cfg
}

func readBuffer(path string) ([]byte, string, error) {
	if path == "-" {
		buffer, err := io.ReadAll(os.Stdin)
		origin := originLabel
		if origin == "" {
			origin = "stdin"
		}
		return buffer, origin, err
	}

	buffer, err := os.ReadFile(path)
	origin := originLabel
	if origin == "" {
		origin = "file://" + path
	}
	return buffer, origin, err
}
