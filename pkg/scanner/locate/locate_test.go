package locate

import (
	"bytes"
	"strings"
	"testing"
)

func TestOccurrences(t *testing.T) {
	tests := []struct {
		name          string
		buffer        string
		value         string
		maxHighlights int
		wantSpans     int
	}{
		{
			name:          "all occurrences within limit",
			buffer:        "a TOKEN b TOKEN c",
			value:         "TOKEN",
			maxHighlights: 3,
			wantSpans:     2,
		},
		{
			name:          "limit caps occurrences",
			buffer:        strings.Repeat("x TOKEN ", 5),
			value:         "TOKEN",
			maxHighlights: 3,
			wantSpans:     3,
		},
		{
			name:          "value absent",
			buffer:        "nothing to see here",
			value:         "TOKEN",
			maxHighlights: 3,
			wantSpans:     0,
		},
		{
			name:          "overlapping candidates count once",
			buffer:        "aaaaa",
			value:         "aaa",
			maxHighlights: 5,
			wantSpans:     1,
		},
		{
			name:          "empty value",
			buffer:        "abc",
			value:         "",
			maxHighlights: 3,
			wantSpans:     0,
		},
		{
			name:          "zero highlight budget",
			buffer:        "a TOKEN b",
			value:         "TOKEN",
			maxHighlights: 0,
			wantSpans:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := Occurrences([]byte(tt.buffer), []byte(tt.value), tt.maxHighlights)

			if spans == nil {
				t.Fatal("Occurrences returned nil, want empty slice baseline")
			}
			if len(spans) != tt.wantSpans {
				t.Fatalf("Occurrences returned %d spans, want %d", len(spans), tt.wantSpans)
			}

			prevEnd := 0
			for i, span := range spans {
				if !bytes.Equal([]byte(tt.buffer)[span.Start:span.End], []byte(tt.value)) {
					t.Errorf("span %d [%d:%d] does not bound the value", i, span.Start, span.End)
				}
				if span.Start < prevEnd {
					t.Errorf("span %d [%d:%d] overlaps previous span ending at %d", i, span.Start, span.End, prevEnd)
				}
				prevEnd = span.End
			}
		})
	}
}
