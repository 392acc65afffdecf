package cmd

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/CompassSecurity/responseleak/pkg/scanner"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// loadCounters restores a persisted counters file into the store. The file
// may come from an older run or another tool, so it is parsed tolerantly:
// non-numeric or malformed entries are skipped instead of failing the run.
func loadCounters(path string, store *scanner.Store) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if !gjson.ValidBytes(raw) {
		return errors.New("counters file is not valid JSON")
	}

	restored := 0
	gjson.ParseBytes(raw).ForEach(func(origin, perOrigin gjson.Result) bool {
		if !perOrigin.IsObject() {
			return true
		}
		perOrigin.ForEach(func(value, count gjson.Result) bool {
			if count.Type != gjson.Number {
				return true
			}
			store.MergeExternalCount(origin.String(), value.String(), int(count.Int()))
			restored++
			return true
		})
		return true
	})

	log.Debug().Int("count", restored).Str("path", path).Msg("Restored duplicate counters")
	return nil
}

func saveCounters(path string, store *scanner.Store) error {
	data, err := json.MarshalIndent(store.Export(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
