package call

import (
	"strings"
	"testing"
)

func TestGenerateScript_Deterministic(t *testing.T) {
	a := GenerateScript("Blue Bottle Coffee", "Cafe", "123 Main St, Oakland")
	b := GenerateScript("Blue Bottle Coffee", "Cafe", "123 Main St, Oakland")
	if a != b {
		t.Error("expected identical inputs to produce identical output")
	}
}

func TestGenerateScript_FullAttributes(t *testing.T) {
	script := GenerateScript("Blue Bottle Coffee", "Cafe", "123 Main St, Oakland")

	if !strings.Contains(script, "Hi, I'm calling Blue Bottle Coffee in Oakland.") {
		t.Errorf("expected greeting with location, got %q", script)
	}
	if !strings.Contains(script, "I see you're a cafe business.") {
		t.Errorf("expected lower-cased category clause, got %q", script)
	}
	if !strings.Contains(script, "quick minute") {
		t.Errorf("expected call-to-action, got %q", script)
	}
}

func TestGenerateScript_EmptyOptionalFields(t *testing.T) {
	script := GenerateScript("Acme Corp", "", "")

	if !strings.HasPrefix(script, "Hi, I'm calling Acme Corp. ") {
		t.Errorf("expected clean greeting, got %q", script)
	}
	for _, broken := range []string{"  ", "..", "in ,", "in .", "a  business"} {
		if strings.Contains(script, broken) {
			t.Errorf("expected no %q in script, got %q", broken, script)
		}
	}
}

func TestGenerateScript_AddressWithoutComma(t *testing.T) {
	script := GenerateScript("Acme Corp", "Plumbing", "Main Street 5")
	if strings.Contains(script, " in ") {
		t.Errorf("expected no location clause for comma-less address, got %q", script)
	}
}

func TestGenerateScript_TrailingComma(t *testing.T) {
	script := GenerateScript("Acme Corp", "", "123 Main St,")
	if strings.Contains(script, "in .") || strings.Contains(script, "in  ") {
		t.Errorf("expected empty trailing segment to be ignored, got %q", script)
	}
}
