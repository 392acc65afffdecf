package types

import "regexp"

// PatternSpec is a declarative secret pattern before compilation. The three
// fragments are concatenated as prefix+body+suffix; the body of the generic
// family carries the min_length/max_length placeholder tokens.
type PatternSpec struct {
	Name   string `yaml:"name"`
	Prefix string `yaml:"prefix"`
	Body   string `yaml:"body"`
	Suffix string `yaml:"suffix"`
}

// CompiledPattern is a PatternSpec with its compiled matcher. Generic marks
// the patterns whose matches are routed through the randomness classifier.
type CompiledPattern struct {
	Spec    PatternSpec
	Regex   *regexp.Regexp
	Generic bool
}

// Span is a byte-offset range [Start, End) into a scanned buffer.
type Span struct {
	Start int
	End   int
}

// Finding is one reported secret occurrence. Multiple findings may share the
// same Type and Value when the same secret appears more than once in a buffer.
type Finding struct {
	Type  string
	Value string
	Start int
	End   int
}
