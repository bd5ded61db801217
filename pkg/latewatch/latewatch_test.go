package latewatch

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

var kl = time.FixedZone("MYT", 8*3600)

func fixedClock() time.Time { return time.Date(2024, 3, 8, 1, 0, 0, 0, time.UTC) }

const csvFeed = "Date,ID,Name,Class,Reason\n" +
	"2024-03-04 07:45,m1,ali,5 Alpha,Hujan\n" +
	"2024-03-04 08:30,m1,ALI,5 Alpha,\n" +
	"2024-03-05 08:00,m2,siti,5 Beta,\n"

func TestNormalizeCSV(t *testing.T) {
	records, err := Normalize([]byte(csvFeed), "text/csv", WithLocation(kl))
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].PersonName != "SITI" || records[1].PersonName != "ALI" {
		t.Fatalf("unexpected order: %+v", records)
	}
	if records[1].MinutesLate != 15 || records[1].Reason != "Hujan" {
		t.Errorf("first ALI row should win, got %+v", records[1])
	}
	if records[0].Reason != "Tiada Rekod" {
		t.Errorf("blank reason = %q, want default", records[0].Reason)
	}
}

func TestNormalizeReport(t *testing.T) {
	body := []byte(csvFeed + "not a date,m3,raju,5 Gamma,\n")
	rep, err := New(WithLocation(kl), WithClock(fixedClock)).NormalizeReport(body, "text/csv")
	if err != nil {
		t.Fatalf("NormalizeReport() error: %v", err)
	}
	if rep.InputRows != 4 {
		t.Errorf("InputRows = %d, want 4", rep.InputRows)
	}
	if rep.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", rep.Duplicates)
	}
	if rep.DateFallbacks != 1 {
		t.Errorf("DateFallbacks = %d, want 1", rep.DateFallbacks)
	}
	if rep.Records[0].PersonName != "RAJU" {
		t.Errorf("clock fallback record should be newest, got %q", rep.Records[0].PersonName)
	}
}

func TestWithLocaleEnglish(t *testing.T) {
	records, err := Normalize([]byte(`[{"Name":"ali","Date":"2024-03-04 08:00"}]`), "application/json",
		WithLocation(kl), WithLocale("en"))
	if err != nil {
		t.Fatal(err)
	}
	if records[0].GroupName != "GENERAL" || records[0].Reason != "No record" {
		t.Fatalf("english defaults not applied: %+v", records[0])
	}
}

func TestRecordJSONFieldNames(t *testing.T) {
	records, err := Normalize([]byte(csvFeed), "text/csv", WithLocation(kl))
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(records[0])
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	json.Unmarshal(data, &m)
	for _, key := range []string{"id", "personId", "personName", "groupName", "timestamp", "reason", "minutesLate"} {
		if _, ok := m[key]; !ok {
			t.Errorf("JSON missing %q: %s", key, data)
		}
	}
}

func TestErrorsReexported(t *testing.T) {
	_, err := Normalize([]byte("<html><title>Login</title></html>"), "text/html")
	if !errors.Is(err, ErrAuthRequired) {
		t.Errorf("expected ErrAuthRequired, got %v", err)
	}

	_, err = Normalize([]byte(`{"records": [`), "application/json")
	if !errors.Is(err, ErrDecodeFailure) {
		t.Errorf("expected ErrDecodeFailure, got %v", err)
	}
}

func TestEmptyFeed(t *testing.T) {
	records, err := Normalize([]byte("[]"), "application/json")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records, want 0", len(records))
	}
}

func TestConcurrentNormalize(t *testing.T) {
	lw := New(WithLocation(kl))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			records, err := lw.Normalize([]byte(csvFeed), "text/csv")
			if err != nil || len(records) != 2 {
				t.Errorf("Normalize() = %d records, %v", len(records), err)
			}
		}()
	}
	wg.Wait()
}
