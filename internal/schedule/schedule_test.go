package schedule

import (
	"errors"
	"testing"
	"time"
)

func TestParse_SingleToken(t *testing.T) {
	s, err := Parse("G", "20")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	for day := time.Sunday; day <= time.Saturday; day++ {
		if s.HourFor(day) != 20 {
			t.Errorf("%s = %d, want 20", day, s.HourFor(day))
		}
	}
	if s.Name != "G" {
		t.Errorf("name = %q", s.Name)
	}
}

func TestParse_SevenTokens(t *testing.T) {
	s, err := Parse("G", "9#9#9#9#9#21#21")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	want := map[time.Weekday]int{
		time.Monday: 9, time.Tuesday: 9, time.Wednesday: 9, time.Thursday: 9,
		time.Friday: 9, time.Saturday: 21, time.Sunday: 21,
	}
	for day, h := range want {
		if s.HourFor(day) != h {
			t.Errorf("%s = %d, want %d", day, s.HourFor(day), h)
		}
	}

	if s.String() != "9#9#9#9#9#21#21" {
		t.Errorf("String() = %q", s.String())
	}
}

func TestParse_EmptyTokensDiscarded(t *testing.T) {
	s, err := Parse("G", "#1##2#3#4#5#6#7#")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if s.HourFor(time.Monday) != 1 || s.HourFor(time.Sunday) != 7 {
		t.Errorf("unexpected table %v", s.Hours)
	}

	s, err = Parse("G", " 5 ")
	if err != nil || s.HourFor(time.Friday) != 5 {
		t.Errorf("whitespace token: %v %v", s.Hours, err)
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := []string{
		"",
		"#",
		"1#2#3",
		"abc",
		"1#2#3#4#5#6#7#8",
		"24",
		"-1",
		"9#9#9#x#9#21#21",
		"9#9#9#9#9#21#24",
	}

	for _, text := range cases {
		s, err := Parse("G", text)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Parse(%q) error = %v, want ParseError", text, err)
			continue
		}
		if pe.Game != "G" || pe.Text != text {
			t.Errorf("ParseError fields = %+v", pe)
		}
		if s != (GameSchedule{}) {
			t.Errorf("Parse(%q) returned partial schedule %v", text, s)
		}
	}
}

func TestNeedsHost_Monotonic(t *testing.T) {
	// 2026-10-13 is a Tuesday.
	s, err := Parse("G", "1#14#1#1#1#1#1")
	if err != nil {
		t.Fatal(err)
	}

	for h := 0; h < 24; h++ {
		now := time.Date(2026, 10, 13, h, 30, 0, 0, time.UTC)
		if got, want := NeedsHost(s, now), h >= 14; got != want {
			t.Errorf("hour %d: NeedsHost = %v, want %v", h, got, want)
		}
	}
}

func TestNeedsHost_ConvertsToUTC(t *testing.T) {
	s, _ := Parse("G", "20")
	zone := time.FixedZone("UTC+3", 3*60*60)

	// 22:00 local is 19:00 UTC.
	if NeedsHost(s, time.Date(2026, 10, 13, 22, 0, 0, 0, zone)) {
		t.Error("expected false before 20:00 UTC")
	}
	if !NeedsHost(s, time.Date(2026, 10, 13, 23, 0, 0, 0, zone)) {
		t.Error("expected true at 20:00 UTC")
	}
}

func TestSlot(t *testing.T) {
	s, _ := Parse("G", "9#9#9#9#9#21#21")
	now := time.Date(2026, 10, 17, 22, 5, 0, 0, time.UTC)

	if got := Slot(s, now); got != "2026-10-17@21" {
		t.Errorf("Slot = %q", got)
	}
	if Slot(s, now) != Slot(s, now.Add(time.Hour)) {
		t.Error("slot changed within the same day")
	}
	if Slot(s, now) == Slot(s, now.Add(3*time.Hour)) {
		t.Error("slot did not change across midnight")
	}
}
