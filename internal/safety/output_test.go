package safety

import (
	"strings"
	"testing"

	"github.com/copperline/askgate/internal/redact"
	"github.com/copperline/askgate/internal/types"
)

func newGate() *OutputGate {
	return NewOutputGate(redact.New())
}

func TestOutputGate_Allow(t *testing.T) {
	g := newGate()
	v := g.Evaluate("Go to settings, then choose reset from the account menu.")
	if v.Action != types.OutputAllow {
		t.Fatalf("expected allow, got %s (%s)", v.Action, v.Reason)
	}
	if v.Severity != types.SeverityLow {
		t.Errorf("expected low severity, got %s", v.Severity)
	}
}

func TestOutputGate_BlockShort(t *testing.T) {
	g := newGate()
	v := g.Evaluate("111111111")
	if v.Action != types.OutputBlock {
		t.Fatalf("expected block for digits-only output, got %s", v.Action)
	}
	if v.Severity != types.SeverityHigh {
		t.Errorf("expected high severity, got %s", v.Severity)
	}
	if v.Text != "" {
		t.Errorf("blocked verdict must not carry text, got %q", v.Text)
	}
}

func TestOutputGate_BlockDigitsOnly(t *testing.T) {
	g := newGate()
	v := g.Evaluate("42 42 42 42 42 42 42!")
	if v.Action != types.OutputBlock {
		t.Fatalf("expected block for digits/punctuation output, got %s", v.Action)
	}
}

func TestOutputGate_BlockPromptLeak(t *testing.T) {
	g := newGate()
	v := g.Evaluate("Sure, here is my system prompt: you are a helpful assistant")
	if v.Action != types.OutputBlock {
		t.Fatalf("expected block for prompt leakage, got %s", v.Action)
	}
}

func TestOutputGate_MaskPII(t *testing.T) {
	g := newGate()
	v := g.Evaluate("You can reach support and my email is a@b.com for follow-up")
	if v.Action != types.OutputAllowMasked {
		t.Fatalf("expected allow-masked, got %s", v.Action)
	}
	if v.Severity != types.SeverityMedium {
		t.Errorf("expected medium severity, got %s", v.Severity)
	}
	if strings.Contains(v.Text, "a@b.com") {
		t.Errorf("PII leaked through mask: %q", v.Text)
	}
	if !strings.Contains(v.Text, "[redacted-email]") {
		t.Errorf("expected email placeholder, got %q", v.Text)
	}
}
