// Package locate finds where a confirmed secret value sits inside the source
// buffer, independent of the pattern match that discovered it.
package locate

import (
	"bytes"

	"github.com/CompassSecurity/responseleak/pkg/scanner/types"
)

// Occurrences returns the byte spans of up to maxHighlights non-overlapping
// occurrences of value in buffer, in buffer order. Plain byte-sequence
// search, no regex: the value is already literal at this point. An empty
// result means the value does not occur, which callers must tolerate even
// though values normally come straight out of the same buffer.
func Occurrences(buffer []byte, value []byte, maxHighlights int) []types.Span {
	spans := []types.Span{}
	if len(value) == 0 || maxHighlights < 1 {
		return spans
	}

	cursor := 0
	for len(spans) < maxHighlights {
		i := bytes.Index(buffer[cursor:], value)
		if i < 0 {
			break
		}
		start := cursor + i
		end := start + len(value)
		spans = append(spans, types.Span{Start: start, End: end})
		cursor = end
	}

	return spans
}
