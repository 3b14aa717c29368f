package timegrid

import (
	"errors"
	"testing"
	"time"
)

func mustInterval(t *testing.T, date Date, start, end TimeOfDay) DayInterval {
	t.Helper()
	interval, err := NewDayInterval(date, start, end)
	if err != nil {
		t.Fatalf("NewDayInterval(%s, %s, %s): %v", date, start, end, err)
	}
	return interval
}

func TestNewTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		hour    int
		minute  int
		want    TimeOfDay
		wantErr bool
	}{
		{name: "midnight", hour: 0, minute: 0, want: 0},
		{name: "nine o'clock", hour: 9, minute: 0, want: 540},
		{name: "last minute of day", hour: 23, minute: 59, want: 1439},
		{name: "hour out of range", hour: 24, minute: 0, wantErr: true},
		{name: "minute out of range", hour: 9, minute: 60, wantErr: true},
		{name: "negative hour", hour: -1, minute: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeOfDay(tt.hour, tt.minute)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTimeOfDay) {
					t.Fatalf("expected ErrInvalidTimeOfDay, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("09:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 570 {
		t.Fatalf("got %d, want 570", got)
	}
	if got.String() != "09:30" {
		t.Fatalf("String() = %q, want %q", got.String(), "09:30")
	}

	if _, err := ParseTimeOfDay("not a time"); !errors.Is(err, ErrInvalidTimeOfDay) {
		t.Fatalf("expected ErrInvalidTimeOfDay, got %v", err)
	}
}

func TestDateWeekday(t *testing.T) {
	// 2025-03-05 is a Wednesday.
	d := MustDate(2025, time.March, 5)
	if d.Weekday() != time.Wednesday {
		t.Fatalf("got %v, want Wednesday", d.Weekday())
	}
}

func TestDateWeekOfMonth(t *testing.T) {
	tests := []struct {
		day  int
		want int
	}{
		{day: 1, want: 1},
		{day: 7, want: 1},
		{day: 8, want: 2},
		{day: 14, want: 2},
		{day: 15, want: 3},
		{day: 29, want: 5},
	}

	for _, tt := range tests {
		d := MustDate(2025, time.January, tt.day)
		if got := d.WeekOfMonth(); got != tt.want {
			t.Errorf("day %d: got week %d, want %d", tt.day, got, tt.want)
		}
	}
}

func TestNewDateRejectsNonexistentDays(t *testing.T) {
	if _, err := NewDate(2025, time.February, 30); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := NewDate(2024, time.February, 29); err != nil {
		t.Fatalf("leap day should be valid, got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Equal(MustDate(2025, time.March, 5)) {
		t.Fatalf("got %s", d)
	}

	if _, err := ParseDate("05/03/2025"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestNewDayIntervalValidation(t *testing.T) {
	date := MustDate(2025, time.March, 4)

	tests := []struct {
		name  string
		start TimeOfDay
		end   TimeOfDay
	}{
		{name: "inverted", start: 600, end: 540},
		{name: "zero length", start: 540, end: 540},
		{name: "start below range", start: -1, end: 540},
		{name: "end above range", start: 540, end: MinutesPerDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDayInterval(date, tt.start, tt.end); !errors.Is(err, ErrInvalidInterval) {
				t.Fatalf("expected ErrInvalidInterval, got %v", err)
			}
		})
	}

	if _, err := NewDayInterval(date, 540, 660); err != nil {
		t.Fatalf("valid interval rejected: %v", err)
	}
}

func TestOverlapsDifferentDates(t *testing.T) {
	a := mustInterval(t, MustDate(2025, time.March, 4), 540, 660)
	b := mustInterval(t, MustDate(2025, time.March, 5), 540, 660)

	if a.Overlaps(b) || b.Overlaps(a) {
		t.Fatal("intervals on different dates must never overlap")
	}
}

func TestOverlapsSymmetry(t *testing.T) {
	date := MustDate(2025, time.March, 4)

	tests := []struct {
		name string
		a, b DayInterval
		want bool
	}{
		{name: "partial overlap", a: mustInterval(t, date, 540, 660), b: mustInterval(t, date, 600, 720), want: true},
		{name: "containment", a: mustInterval(t, date, 480, 1080), b: mustInterval(t, date, 540, 660), want: true},
		{name: "disjoint", a: mustInterval(t, date, 540, 600), b: mustInterval(t, date, 720, 780), want: false},
		{name: "identical", a: mustInterval(t, date, 540, 660), b: mustInterval(t, date, 540, 660), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Fatalf("a.Overlaps(b) = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Fatalf("overlap is not symmetric: b.Overlaps(a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTouchingIntervalsDoNotOverlap(t *testing.T) {
	date := MustDate(2025, time.March, 4)
	morning := mustInterval(t, date, 540, 600)  // 09:00-10:00
	midday := mustInterval(t, date, 600, 660)   // 10:00-11:00

	if morning.Overlaps(midday) || midday.Overlaps(morning) {
		t.Fatal("touching endpoints must not conflict")
	}
}

func TestContains(t *testing.T) {
	date := MustDate(2025, time.March, 4)
	window := mustInterval(t, date, 480, 1080) // 08:00-18:00

	if !window.Contains(mustInterval(t, date, 540, 660)) {
		t.Fatal("window should contain inner interval")
	}
	if !window.Contains(window) {
		t.Fatal("window should contain itself")
	}
	if window.Contains(mustInterval(t, date, 540, 1140)) {
		t.Fatal("window must not contain interval extending past its end")
	}
	other := mustInterval(t, MustDate(2025, time.March, 5), 540, 660)
	if window.Contains(other) {
		t.Fatal("window must not contain interval on another date")
	}
}
