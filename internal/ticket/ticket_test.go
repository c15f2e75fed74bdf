package ticket

import (
	"strings"
	"testing"
)

func TestNewFormat(t *testing.T) {
	n := New()
	if !strings.HasPrefix(n, NumberPrefix) {
		t.Fatalf("ticket number %q missing prefix %q", n, NumberPrefix)
	}
	suffix := strings.TrimPrefix(n, NumberPrefix)
	if len(suffix) != 8 {
		t.Fatalf("ticket suffix %q: want 8 characters, got %d", suffix, len(suffix))
	}
	for _, r := range suffix {
		if !strings.ContainsRune("0123456789ABCDEF", r) {
			t.Fatalf("ticket suffix %q contains non-uppercase-hex rune %q", suffix, r)
		}
	}
}

func TestNewUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		n := New()
		if seen[n] {
			t.Fatalf("duplicate ticket number %q after %d draws", n, i)
		}
		seen[n] = true
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	const (
		number  = "REG_1A2B3C4D"
		email   = "alice@example.com"
		eventID = "7b8e6f7c-3a3f-4a6e-9a1d-2f4f5e6a7b8c"
	)

	payload := Payload(number, email, eventID)
	if payload != "TICKET|REG_1A2B3C4D|alice@example.com|"+eventID {
		t.Fatalf("unexpected payload %q", payload)
	}

	gotNumber, gotEmail, gotEvent, err := ParsePayload(payload)
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if gotNumber != number || gotEmail != email || gotEvent != eventID {
		t.Fatalf("round trip mismatch: got (%q, %q, %q)", gotNumber, gotEmail, gotEvent)
	}
}

func TestParsePayloadRejectsMalformed(t *testing.T) {
	for _, payload := range []string{
		"",
		"TICKET|only|two",
		"BADGE|a|b|c",
		"TICKET|a|b|c|d",
	} {
		if _, _, _, err := ParsePayload(payload); err == nil {
			t.Errorf("ParsePayload(%q): expected error", payload)
		}
	}
}

func TestArtifactKey(t *testing.T) {
	if got := ArtifactKey("REG_DEADBEEF"); got != "REG_DEADBEEF.png" {
		t.Fatalf("ArtifactKey = %q", got)
	}
}
