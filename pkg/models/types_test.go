package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseOptionKind(t *testing.T) {
	tests := []struct {
		in      string
		want    OptionKind
		wantErr bool
	}{
		{"call", OptionKindCall, false},
		{"CALL", OptionKindCall, false},
		{" put ", OptionKindPut, false},
		{"Put", OptionKindPut, false},
		{"straddle", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOptionKind(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseOptionKind(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestOptionKindValid(t *testing.T) {
	if !OptionKindCall.Valid() || !OptionKindPut.Valid() {
		t.Fatal("call and put must be valid")
	}
	if OptionKind(0).Valid() || OptionKind(3).Valid() {
		t.Fatal("values outside {call, put} must be invalid")
	}
	if got := OptionKind(9).String(); got != "OptionKind(9)" {
		t.Fatalf("unexpected String for invalid kind: %s", got)
	}
}

func TestOptionKindJSON(t *testing.T) {
	req := PricingRequest{Strike: 102, OptionKind: OptionKindPut}
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"option_kind":"put"`) {
		t.Fatalf("expected option_kind put in %s", data)
	}

	var decoded PricingRequest
	if err := json.Unmarshal([]byte(`{"option_kind":"CALL"}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.OptionKind != OptionKindCall {
		t.Fatalf("expected call, got %v", decoded.OptionKind)
	}

	if err := json.Unmarshal([]byte(`{"option_kind":"binary"}`), &decoded); err == nil {
		t.Fatal("expected error for unknown option kind")
	}
}

func TestOptionKindMarshalInvalid(t *testing.T) {
	if _, err := json.Marshal(PricingRequest{}); err == nil {
		t.Fatal("expected marshal of zero option kind to fail")
	}
}

func TestExecutionMode(t *testing.T) {
	if ExecutionMode(true) != "concurrent" || ExecutionMode(false) != "sequential" {
		t.Fatal("unexpected execution mode labels")
	}
	if (PricingResult{Concurrent: true}).Mode() != "concurrent" {
		t.Fatal("PricingResult.Mode should follow Concurrent")
	}
}

func TestParseRunStatus(t *testing.T) {
	for _, s := range []string{"pending", "RUNNING", "Completed", "failed"} {
		if _, ok := ParseRunStatus(s); !ok {
			t.Errorf("expected %q to parse", s)
		}
	}
	if _, ok := ParseRunStatus("cancelled"); ok {
		t.Error("cancelled is not a pricing run status")
	}
	if !RunStatusCompleted.Terminal() || !RunStatusFailed.Terminal() {
		t.Error("completed and failed are terminal")
	}
	if RunStatusRunning.Terminal() {
		t.Error("running is not terminal")
	}
}
