package validation

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "date only", value: "1990-01-01", want: "1990-01-01T00:00:00Z"},
		{name: "rfc3339 utc", value: "1990-01-01T15:30:00Z", want: "1990-01-01T15:30:00Z"},
		{name: "rfc3339 offset converts to utc", value: "1990-01-02T01:00:00+05:30", want: "1990-01-01T19:30:00Z"},
		{name: "datetime-local input", value: "1990-01-01T08:15", want: "1990-01-01T08:15:00Z"},
		{name: "surrounding space", value: " 1990-01-01 ", want: "1990-01-01T00:00:00Z"},
		{name: "empty", value: "", wantErr: true},
		{name: "garbage", value: "not-a-date", wantErr: true},
		{name: "impossible day", value: "1990-02-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Format(time.RFC3339) != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.value, got.Format(time.RFC3339), tt.want)
			}
		})
	}
}

func TestSameCalendarDate(t *testing.T) {
	morning := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	evening := time.Date(1990, 1, 1, 23, 59, 0, 0, time.UTC)
	nextDay := time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)
	ist := time.FixedZone("IST", 5*3600+1800)
	sameInstantIST := time.Date(1990, 1, 1, 5, 30, 0, 0, ist) // 1990-01-01T00:00Z

	if !SameCalendarDate(morning, evening) {
		t.Error("times on the same day should match")
	}
	if SameCalendarDate(evening, nextDay) {
		t.Error("times on different days should not match")
	}
	if !SameCalendarDate(morning, sameInstantIST) {
		t.Error("zone offsets should be normalized to UTC before comparing")
	}
	if got := CalendarDate(evening); got != "1990-01-01" {
		t.Errorf("CalendarDate() = %s, want 1990-01-01", got)
	}
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		value string
		want  *int
	}{
		{"20", intPtr(20)},
		{" 18 ", intPtr(18)},
		{"42years", intPtr(42)},
		{"-3", intPtr(-3)},
		{"+7", intPtr(7)},
		{"", nil},
		{"abc", nil},
		{"-", nil},
		{"twelve", nil},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got := ParseAge(tt.value)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("ParseAge(%q) = %d, want nil", tt.value, *got)
			case tt.want != nil && got == nil:
				t.Errorf("ParseAge(%q) = nil, want %d", tt.value, *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("ParseAge(%q) = %d, want %d", tt.value, *got, *tt.want)
			}
		})
	}
}

func intPtr(v int) *int {
	return &v
}
