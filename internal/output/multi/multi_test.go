package multi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crimson-sun/latewatch/internal/model"
)

type mockOutput struct {
	records []model.LateRecord
	closed  bool
	err     error
}

func (m *mockOutput) Write(_ context.Context, rec model.LateRecord) error {
	m.records = append(m.records, rec)
	return m.err
}

func (m *mockOutput) Close() error {
	m.closed = true
	return m.err
}

func testRecord(name string) model.LateRecord {
	return model.LateRecord{
		PersonID:    "S-1000",
		PersonName:  name,
		GroupName:   "UMUM",
		Timestamp:   time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC),
		MinutesLate: 30,
	}
}

func TestFanOutDeliversToAll(t *testing.T) {
	a, b, c := &mockOutput{}, &mockOutput{}, &mockOutput{}
	m := New(a, b, c)

	if err := m.Write(context.Background(), testRecord("ALI")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, out := range []*mockOutput{a, b, c} {
		if len(out.records) != 1 {
			t.Fatalf("output %d: got %d records, want 1", i, len(out.records))
		}
		if out.records[0].PersonName != "ALI" {
			t.Errorf("output %d: personName = %q", i, out.records[0].PersonName)
		}
	}
}

func TestFailingOutputDoesNotBlockOthers(t *testing.T) {
	boom := errors.New("disk full")
	a := &mockOutput{err: boom}
	b := &mockOutput{}
	m := New(a, b)

	err := m.Write(context.Background(), testRecord("ALI"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error containing %v, got %v", boom, err)
	}
	if len(b.records) != 1 {
		t.Fatal("second output should still receive the record")
	}
}

func TestCloseClosesAll(t *testing.T) {
	boom := errors.New("close failed")
	a := &mockOutput{err: boom}
	b := &mockOutput{}
	m := New(a, b)

	if err := m.Close(); !errors.Is(err, boom) {
		t.Fatalf("expected close error, got %v", err)
	}
	if !a.closed || !b.closed {
		t.Fatal("every output should be closed")
	}
}

func TestNilOutputsSkipped(t *testing.T) {
	a := &mockOutput{}
	m := New(nil, a, nil)
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
	if err := m.Write(context.Background(), testRecord("ALI")); err != nil {
		t.Fatal(err)
	}
}

func TestEmptyMulti(t *testing.T) {
	m := New()
	if err := m.Write(context.Background(), testRecord("ALI")); err != nil {
		t.Fatalf("empty multi Write: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("empty multi Close: %v", err)
	}
}
