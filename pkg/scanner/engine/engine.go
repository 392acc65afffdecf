// Package engine drives one buffer through the full detection pipeline:
// pattern matching, randomness filtering for the generic family, cross-scan
// threshold suppression and occurrence expansion into highlight spans.
package engine

import (
	"regexp"
	"strings"

	"github.com/CompassSecurity/responseleak/pkg/config"
	"github.com/CompassSecurity/responseleak/pkg/logging"
	"github.com/CompassSecurity/responseleak/pkg/scanner/dedupe"
	"github.com/CompassSecurity/responseleak/pkg/scanner/locate"
	"github.com/CompassSecurity/responseleak/pkg/scanner/random"
	"github.com/CompassSecurity/responseleak/pkg/scanner/rules"
	"github.com/CompassSecurity/responseleak/pkg/scanner/types"
	"github.com/acarl005/stripansi"
	"github.com/rs/zerolog/log"
	"github.com/rxwycdh/rxhash"
)

// Scanner scans byte buffers against one immutable configuration snapshot.
// All per-scan work is synchronous CPU-bound; the only shared mutable state
// is the injected counter store, so one Scanner may serve many goroutines.
type Scanner struct {
	settings   config.Settings
	patterns   []*types.CompiledPattern
	classifier *random.Classifier
	store      *dedupe.Store

	// exemption is the compiled reCAPTCHA Site Key matcher, resolved once at
	// construction. Site keys are public by design and only add noise when
	// the generic family picks them up.
	exemption *regexp.Regexp
}

// NewScanner validates cfg, compiles its pattern set and binds the shared
// counter store. Individual pattern compile failures are logged and the
// pattern dropped; an invalid Settings value is a hard error.
func NewScanner(cfg *config.Config, store *dedupe.Store) (*Scanner, error) {
	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}

	compiled, errs := rules.CompileAll(cfg.Patterns, cfg.Settings.GenericSecretMinLength, cfg.Settings.GenericSecretMaxLength)
	if len(errs) > 0 {
		log.Warn().Int("failed", len(errs)).Int("active", len(compiled)).Msg("Some secret patterns failed to compile and were dropped")
	}

	s := &Scanner{
		settings:   cfg.Settings,
		patterns:   compiled,
		classifier: random.NewClassifier(cfg.Settings.GenericSecretMinLength),
		store:      store,
	}

	for _, cp := range compiled {
		if cp.Spec.Name == rules.RecaptchaSiteKeyName {
			s.exemption = cp.Regex
			break
		}
	}

	return s, nil
}

// Store exposes the injected counter store, e.g. for export by the host.
func (s *Scanner) Store() *dedupe.Store {
	return s.store
}

type findingKey struct {
	Pattern string
	Value   string
}

// Scan runs every active pattern over buffer in configuration order and
// returns the surviving findings, one per highlight span. Deterministic for
// a fixed configuration and counter state.
func (s *Scanner) Scan(buffer []byte, origin string) []types.Finding {
	findings := []types.Finding{}
	seen := map[string]struct{}{}

	for _, cp := range s.patterns {
		// The site key pattern exists only to exempt generic matches.
		if cp.Spec.Name == rules.RecaptchaSiteKeyName {
			continue
		}

		if cp.Generic && !s.settings.RandomnessEnabled {
			log.Debug().Str("pattern", cp.Spec.Name).Msg("Randomness algorithm disabled, skipping generic pattern")
			continue
		}

		for _, match := range cp.Regex.FindAllSubmatchIndex(buffer, -1) {
			value := extractCandidate(cp, buffer, match)
			if len(value) == 0 {
				continue
			}

			if cp.Generic {
				if s.isExempt(value) {
					log.Debug().Str("value", string(value)).Msg("Skipping reCAPTCHA site key matched by generic pattern")
					continue
				}
				if !s.classifier.IsRandom(value) {
					continue
				}
			}

			valueStr := string(value)

			if s.store.CurrentCount(origin, valueStr) >= s.settings.DuplicateThreshold {
				log.Debug().Str("origin", origin).Str("pattern", cp.Spec.Name).Msg("Skipping secret over duplicate threshold")
				continue
			}

			key, err := rxhash.HashStruct(findingKey{Pattern: cp.Spec.Name, Value: valueStr})
			if err != nil {
				key = cp.Spec.Name + "\x00" + valueStr
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			if !s.store.TryAccept(origin, valueStr, s.settings.DuplicateThreshold) {
				continue
			}

			spans := locate.Occurrences(buffer, value, s.settings.MaxHighlightsPerSecret)
			if len(spans) == 0 {
				log.Warn().Str("pattern", cp.Spec.Name).Msg("Accepted secret value not found in buffer, no spans emitted")
				continue
			}

			log.Debug().
				Str("pattern", cp.Spec.Name).
				Str("context", contextSnippet(buffer, spans[0], 30)).
				Int("occurrences", len(spans)).
				Msg("Secret accepted")

			for _, span := range spans {
				findings = append(findings, types.Finding{
					Type:  cp.Spec.Name,
					Value: valueStr,
					Start: span.Start,
					End:   span.End,
				})
			}
		}
	}

	return findings
}

// extractCandidate pulls the secret value out of a submatch index vector:
// capture group one when the pattern defines and matched one, the whole
// match otherwise. Generic patterns always carry the candidate in group one.
func extractCandidate(cp *types.CompiledPattern, buffer []byte, match []int) []byte {
	if len(match) >= 4 && match[2] >= 0 {
		return buffer[match[2]:match[3]]
	}
	if cp.Generic {
		return nil
	}
	return buffer[match[0]:match[1]]
}

func (s *Scanner) isExempt(value []byte) bool {
	if s.exemption == nil {
		return false
	}
	loc := s.exemption.FindIndex(value)
	return loc != nil && loc[0] == 0 && loc[1] == len(value)
}

// contextSnippet returns a cleaned excerpt around span for debug logging.
func contextSnippet(buffer []byte, span types.Span, additionalBytes int) string {
	start := span.Start - additionalBytes
	if start < 0 {
		start = 0
	}
	end := span.End + additionalBytes
	if end > len(buffer) {
		end = len(buffer)
	}

	snippet := strings.ReplaceAll(string(buffer[start:end]), "\n", " ")
	return stripansi.Strip(snippet)
}

// Report emits findings through the hit-level logger, tagged with origin.
func Report(findings []types.Finding, origin string) {
	for _, finding := range findings {
		logging.Hit().
			Str("type", finding.Type).
			Str("value", finding.Value).
			Str("origin", origin).
			Int("start", finding.Start).
			Int("end", finding.End).
			Msg("SECRET")
	}
}
