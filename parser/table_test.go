package parser

import (
	"errors"
	"reflect"
	"testing"
)

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		field string
		raw   string
		want  any
	}{
		{FieldPercentChange, "+12%", 12.0},
		{FieldPercentChange, "-5%", -5.0},
		{FieldPercentChange, "0%", 0.0},
		{FieldPercentChange, "N/A%", "N/A%"},
		{FieldSevenDayTotal, "10", int64(10)},
		{FieldChange, "-3", int64(-3)},
		{FieldChange, "+4", int64(4)},
		{"2026-02-02", " 7 ", int64(7)},
		{FieldOffenseType, "Robbery", "Robbery"},
		{"notes", "12 units", "12 units"},
		{"notes", "", ""},
	}
	for _, tt := range tests {
		got := CoerceValue(tt.field, tt.raw)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("CoerceValue(%q, %q) = %#v (%T), want %#v (%T)",
				tt.field, tt.raw, got, got, tt.want, tt.want)
		}
	}
}

func testNormalizer() *Normalizer {
	return &Normalizer{Year: 2026, Logger: discardLogger()}
}

func TestBuildRecords(t *testing.T) {
	grid := Grid{
		{Cell("Crime Statistics")},
		{Cell("Offense"), Cell("Monday 2/2"), Cell("7-Day Totals")},
		{Cell("Robbery"), Cell("4"), Cell("10")},
	}

	records, err := BuildRecords(grid, testNormalizer())
	if err != nil {
		t.Fatal(err)
	}
	want := []Record{{
		FieldOffenseType: "Robbery",
		"2026-02-02":     int64(4),
		"seven_day_total": int64(10),
	}}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("records = %#v, want %#v", records, want)
	}
}

func TestBuildRecordsTooShort(t *testing.T) {
	records, err := BuildRecords(Grid{{Cell("Title Only")}}, testNormalizer())
	if err != nil {
		t.Fatal(err)
	}
	if records != nil {
		t.Errorf("records = %#v, want nil", records)
	}
}

func TestBuildRecordsSkipsNonDataRows(t *testing.T) {
	grid := Grid{
		{Cell("Crime Statistics")},
		{Cell("Offense"), Cell("7-Day Totals")},
		{Cell(""), Cell("99")},          // blank offense
		{nil, Cell("42")},               // missing offense cell
		{Cell("   "), nil},              // effectively empty
		{Cell("Theft"), Cell("3")},
	}

	records, err := BuildRecords(grid, testNormalizer())
	if err != nil {
		t.Fatal(err)
	}
	want := []Record{{FieldOffenseType: "Theft", "seven_day_total": int64(3)}}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("records = %#v, want %#v", records, want)
	}
}

func TestBuildRecordsOmitsAbsentCells(t *testing.T) {
	grid := Grid{
		{Cell("Crime Statistics")},
		{Cell("Offense"), Cell("Monday 2/2"), Cell("7-Day Totals")},
		{Cell("Arson"), nil, Cell("2")},
	}

	records, err := BuildRecords(grid, testNormalizer())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if _, present := records[0]["2026-02-02"]; present {
		t.Error("absent cell produced a field")
	}
	if got := records[0]["seven_day_total"]; got != int64(2) {
		t.Errorf("seven_day_total = %#v, want 2", got)
	}
}

func TestBuildRecordsCleansHeaderNewlines(t *testing.T) {
	grid := Grid{
		{Cell("Crime Statistics")},
		{Cell("Offense"), Cell("7-Day\nTotals")},
		{Cell("Theft"), Cell("5")},
	}

	records, err := BuildRecords(grid, testNormalizer())
	if err != nil {
		t.Fatal(err)
	}
	if got := records[0]["seven_day_total"]; got != int64(5) {
		t.Errorf("seven_day_total = %#v, want 5", got)
	}
}

type failingTable struct{ err error }

func (f failingTable) Rows() ([][]*string, error) { return nil, f.err }

func TestBuildRecordsPropagatesError(t *testing.T) {
	want := errors.New("cells unreadable")
	_, err := BuildRecords(failingTable{err: want}, testNormalizer())
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}

type panickingTable struct{}

func (panickingTable) Rows() ([][]*string, error) {
	panic("malformed cell structure")
}

func TestBuildRecordsRecoversPanic(t *testing.T) {
	records, err := BuildRecords(panickingTable{}, testNormalizer())
	if err == nil {
		t.Fatal("expected an error")
	}
	if records != nil {
		t.Errorf("records = %#v, want nil", records)
	}
}
