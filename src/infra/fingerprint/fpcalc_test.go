package fingerprint

import (
	"testing"
)

func TestParseOutput(t *testing.T) {
	out := []byte(`{"duration": 214.64, "fingerprint": "AQADtEmSJFGSJEmSBA"}`)

	fp, err := parseOutput(out)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if fp.Value != "AQADtEmSJFGSJEmSBA" {
		t.Errorf("unexpected fingerprint: %s", fp.Value)
	}
	if fp.Duration != 214 {
		t.Errorf("expected duration 214, got %d", fp.Duration)
	}
}

func TestParseOutput_EmptyFingerprint(t *testing.T) {
	if _, err := parseOutput([]byte(`{"duration": 12.3, "fingerprint": ""}`)); err == nil {
		t.Fatal("expected error for empty fingerprint")
	}
}

func TestParseOutput_Garbage(t *testing.T) {
	if _, err := parseOutput([]byte("ERROR: unable to open input")); err == nil {
		t.Fatal("expected error for non-JSON output")
	}
}
