package util

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-06-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if _, err := ParseDate("06/03/2024"); err == nil {
		t.Fatalf("expected error for wrong layout")
	}
}

func TestLastWeekday(t *testing.T) {
	friday := time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)
	cases := map[string]time.Time{
		"friday":   time.Date(2024, 6, 7, 15, 30, 0, 0, time.UTC),
		"saturday": time.Date(2024, 6, 8, 9, 0, 0, 0, time.UTC),
		"sunday":   time.Date(2024, 6, 9, 23, 59, 0, 0, time.UTC),
	}
	for name, in := range cases {
		if got := LastWeekday(in); !got.Equal(friday) {
			t.Fatalf("%s: got %v want %v", name, got, friday)
		}
	}
	monday := time.Date(2024, 6, 10, 1, 0, 0, 0, time.UTC)
	if got := LastWeekday(monday); !got.Equal(TruncateDay(monday)) {
		t.Fatalf("monday: got %v", got)
	}
}

func TestResolveRunDate(t *testing.T) {
	now := time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC)
	got, err := ResolveRunDate("", now)
	if err != nil || got.Weekday() != time.Friday {
		t.Fatalf("empty date: got %v err %v", got, err)
	}
	got, err = ResolveRunDate("2024-06-03", now)
	if err != nil || got.Day() != 3 {
		t.Fatalf("explicit date: got %v err %v", got, err)
	}
}

func TestTruncateDayConvertsToUTC(t *testing.T) {
	ny := time.FixedZone("EST", -5*3600)
	in := time.Date(2024, 6, 3, 22, 0, 0, 0, ny) // 03:00 UTC on the 4th
	if got := TruncateDay(in); got.Day() != 4 || got.Location() != time.UTC {
		t.Fatalf("got %v", got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" k1:9092, ,k2:9092 ")
	if len(got) != 2 || got[0] != "k1:9092" || got[1] != "k2:9092" {
		t.Fatalf("got %v", got)
	}
	if len(SplitList("")) != 0 {
		t.Fatalf("expected empty")
	}
}
