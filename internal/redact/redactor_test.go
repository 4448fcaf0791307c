package redact

import (
	"strings"
	"testing"
)

func TestRedact_Email(t *testing.T) {
	r := New()
	got := r.Redact("contact me at alice.smith+work@example.co.uk please")
	if strings.Contains(got, "alice.smith") || strings.Contains(got, "example.co.uk") {
		t.Fatalf("email not redacted: %q", got)
	}
	if !strings.Contains(got, "[redacted-email]") {
		t.Errorf("expected email placeholder, got %q", got)
	}
}

func TestRedact_Phone(t *testing.T) {
	r := New()
	tests := []string{
		"call me on 555-123-4567",
		"call me on (555) 123-4567",
		"intl: +44 555 123 4567",
		"short form 1234-5678",
	}
	for _, text := range tests {
		got := r.Redact(text)
		if !strings.Contains(got, "[redacted-phone]") {
			t.Errorf("expected phone placeholder for %q, got %q", text, got)
		}
	}
}

func TestRedact_Account(t *testing.T) {
	r := New()
	got := r.Redact("my account is 123456789012")
	if strings.Contains(got, "123456789012") {
		t.Fatalf("account number not redacted: %q", got)
	}
	if !strings.Contains(got, "[redacted-account]") {
		t.Errorf("expected account placeholder, got %q", got)
	}
}

func TestRedact_SecretAssignment(t *testing.T) {
	r := New()
	tests := []string{
		"api_key=sk-abc123def",
		"password: hunter2",
		"my TOKEN = deadbeef",
		"ssn: 078-05-1120",
	}
	for _, text := range tests {
		got := r.Redact(text)
		if !strings.Contains(got, "[redacted-secret]") {
			t.Errorf("expected secret placeholder for %q, got %q", text, got)
		}
	}
}

func TestRedact_CleanTextUnchanged(t *testing.T) {
	r := New()
	clean := []string{
		"How do I reset my password?",
		"What are your business hours?",
		"My order arrived damaged, what now?",
	}
	for _, text := range clean {
		if got := r.Redact(text); got != text {
			t.Errorf("clean text altered: %q -> %q", text, got)
		}
	}
}

func TestRedact_Idempotent(t *testing.T) {
	r := New()
	inputs := []string{
		"email a@b.com phone 555-123-4567 account 12345678",
		"password: hunter2 and my secret: a@b.com",
		"no pii here at all",
		"",
		"12345678@example.com",
	}
	for _, text := range inputs {
		once := r.Redact(text)
		twice := r.Redact(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", text, once, twice)
		}
	}
}

func TestRedact_Changed(t *testing.T) {
	r := New()
	if !r.Changed("mail me: a@b.com") {
		t.Error("expected Changed=true for text with PII")
	}
	if r.Changed("hello world") {
		t.Error("expected Changed=false for clean text")
	}
}

func TestHash_Deterministic(t *testing.T) {
	r := New()
	h1 := r.Hash("How do I reset my password?")
	h2 := r.Hash("How do I reset my password?")
	if h1 != h2 {
		t.Fatalf("hash not deterministic: %q vs %q", h1, h2)
	}
	if len(h1) != 16 {
		t.Errorf("expected 16-char digest, got %d chars", len(h1))
	}
}

func TestHash_RedactsFirst(t *testing.T) {
	r := New()
	// Two inputs that redact to the same text must hash the same.
	h1 := r.Hash("my email is a@b.com")
	h2 := r.Hash("my email is c@d.org")
	if h1 != h2 {
		t.Errorf("inputs with identical redacted form should collide: %q vs %q", h1, h2)
	}
}

func TestHash_DistinctInputs(t *testing.T) {
	r := New()
	corpus := []string{
		"How do I reset my password?",
		"What are your business hours?",
		"Can you help me with billing questions?",
		"I need technical support for my account",
		"Where is my invoice?",
	}
	seen := make(map[string]string)
	for _, text := range corpus {
		h := r.Hash(text)
		if prev, ok := seen[h]; ok {
			t.Fatalf("collision between %q and %q", prev, text)
		}
		seen[h] = text
	}
}
