package rules

import (
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/CompassSecurity/responseleak/pkg/httpclient"
	"github.com/CompassSecurity/responseleak/pkg/scanner/types"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Reserved pattern names with special handling in the engine.
const (
	GenericSecretName   = "Generic Secret"
	GenericSecretV2Name = "Generic Secret v2"
	GenericSecretV3Name = "Generic Secret v3"

	// RecaptchaSiteKeyName is never reported on its own; the engine uses it
	// to drop site keys picked up by the generic family.
	RecaptchaSiteKeyName = "reCAPTCHA Site Key"
)

// Placeholder tokens substituted into the generic bodies before compilation.
const (
	minLengthToken = "min_length"
	maxLengthToken = "max_length"
)

// maxConfiguredLength bounds the substituted repetition counts so a broken
// configuration cannot produce an absurdly expensive pattern.
const maxConfiguredLength = 1024

// IsGeneric reports whether name belongs to the generic secret family, whose
// matches carry the candidate value in capture group one and are filtered by
// the randomness classifier.
func IsGeneric(name string) bool {
	switch name {
	case GenericSecretName, GenericSecretV2Name, GenericSecretV3Name:
		return true
	}
	return false
}

// CompileError describes a single pattern that failed to compile. One bad
// pattern never aborts loading of the rest of the set.
type CompileError struct {
	Name   string
	Reason string
}

func (e *CompileError) Error() string {
	return "pattern " + strconv.Quote(e.Name) + ": " + e.Reason
}

// Compile concatenates prefix+body+suffix, substitutes the length placeholder
// tokens and compiles the result. minLen/maxLen only affect patterns whose
// fragments actually carry the placeholders.
func Compile(spec types.PatternSpec, minLen, maxLen int) (*types.CompiledPattern, error) {
	full := spec.Prefix + spec.Body + spec.Suffix
	if full == "" {
		return nil, &CompileError{Name: spec.Name, Reason: "empty pattern"}
	}

	if strings.Contains(full, minLengthToken) || strings.Contains(full, maxLengthToken) {
		if minLen < 1 || maxLen < minLen || maxLen > maxConfiguredLength {
			return nil, &CompileError{
				Name:   spec.Name,
				Reason: "unusable length bounds " + strconv.Itoa(minLen) + ".." + strconv.Itoa(maxLen),
			}
		}
		full = strings.ReplaceAll(full, minLengthToken, strconv.Itoa(minLen))
		full = strings.ReplaceAll(full, maxLengthToken, strconv.Itoa(maxLen))
	}

	rx, err := regexp.Compile(full)
	if err != nil {
		return nil, &CompileError{Name: spec.Name, Reason: err.Error()}
	}

	return &types.CompiledPattern{Spec: spec, Regex: rx, Generic: IsGeneric(spec.Name)}, nil
}

// CompileAll compiles every spec, logging and collecting per-pattern failures
// while keeping the remaining patterns active.
func CompileAll(specs []types.PatternSpec, minLen, maxLen int) ([]*types.CompiledPattern, []error) {
	compiled := make([]*types.CompiledPattern, 0, len(specs))
	var errs []error

	for _, spec := range specs {
		cp, err := Compile(spec, minLen, maxLen)
		if err != nil {
			log.Error().Err(err).Str("name", spec.Name).Msg("Failed compiling secret pattern, skipping it")
			errs = append(errs, err)
			continue
		}
		compiled = append(compiled, cp)
	}

	return compiled, errs
}

type specFile struct {
	Patterns []types.PatternSpec `yaml:"patterns"`
}

// LoadSpecs reads a pattern file from disk. The file holds a plain list under
// a top-level "patterns" key, one name/prefix/body/suffix entry per pattern.
func LoadSpecs(path string) ([]types.PatternSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file specFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, err
	}

	log.Debug().Int("count", len(file.Patterns)).Str("path", path).Msg("Loaded pattern file")
	return file.Patterns, nil
}

// DownloadSpecs fetches a pattern file and writes it to filepath.
func DownloadSpecs(url string, filepath string) error {
	client := httpclient.GetHTTPClient(nil)

	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	out, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, resp.Body)
	return err
}
