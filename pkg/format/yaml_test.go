package format

import (
	"strings"
	"testing"
)

func TestPrettyPrintYAML(t *testing.T) {
	input := "settings:\n    duplicate_threshold: 5\n    randomness_algorithm_enabled: true\n"

	out, err := PrettyPrintYAML(input)
	if err != nil {
		t.Fatalf("PrettyPrintYAML returned error: %v", err)
	}

	if !strings.Contains(out, "duplicate_threshold: 5") {
		t.Errorf("output lost a key, got:\n%s", out)
	}
	if !strings.Contains(out, "  duplicate_threshold") {
		t.Errorf("output not indented with two spaces, got:\n%s", out)
	}
}

func TestPrettyPrintYAMLInvalidInput(t *testing.T) {
	_, err := PrettyPrintYAML("key: [unclosed")
	if err == nil {
		t.Error("expected error for invalid YAML input")
	}
}
