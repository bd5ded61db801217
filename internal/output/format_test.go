package output

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/crimson-sun/latewatch/internal/model"
)

func testRecord() model.LateRecord {
	return model.LateRecord{
		ID:          "REC-0",
		PersonID:    "S-1001",
		PersonName:  "ALI BIN ABU",
		GroupName:   "5 ALPHA",
		Timestamp:   time.Date(2024, 3, 4, 7, 45, 0, 0, time.UTC),
		Reason:      "Traffic",
		MinutesLate: 15,
	}
}

func TestFormatRecordMinimal(t *testing.T) {
	got := FormatRecord(testRecord(), Minimal)
	if got.ID != "" || got.Reason != "" {
		t.Fatalf("minimal should drop id and reason, got %+v", got)
	}
	if got.PersonName != "ALI BIN ABU" || got.MinutesLate != 15 {
		t.Fatalf("core fields changed: %+v", got)
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["id"]; ok {
		t.Error("id should be omitted from JSON")
	}
	if _, ok := m["reason"]; ok {
		t.Error("reason should be omitted from JSON")
	}
}

func TestFormatRecordStandard(t *testing.T) {
	rec := testRecord()
	if got := FormatRecord(rec, Standard); got != rec {
		t.Fatalf("standard should preserve record, got %+v", got)
	}
}

func TestFormatRecordDoesNotMutate(t *testing.T) {
	rec := testRecord()
	_ = FormatRecord(rec, Minimal)
	if rec.ID != "REC-0" {
		t.Fatal("original record was mutated")
	}
}

func TestParseVerbosity(t *testing.T) {
	tests := []struct {
		in      string
		want    Verbosity
		wantErr bool
	}{
		{"", Standard, false},
		{"standard", Standard, false},
		{" Minimal ", Minimal, false},
		{"full", Standard, true},
	}
	for _, tt := range tests {
		got, err := ParseVerbosity(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVerbosity(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVerbosity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
