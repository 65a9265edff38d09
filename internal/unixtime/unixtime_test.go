package unixtime

import "testing"

func TestFromDateTime(t *testing.T) {
	tests := []struct {
		year, month, day     int
		hour, minute, second int
		want                 int64
	}{
		{1970, 1, 1, 0, 0, 0, 0},
		{1970, 1, 2, 0, 0, 0, 86400},
		{1969, 12, 31, 23, 59, 59, -1},
		{2023, 11, 14, 22, 13, 20, 1700000000},
		{2000, 2, 29, 0, 0, 0, 951782400},  // leap day in a 400-year
		{1900, 3, 1, 0, 0, 0, -2203891200}, // 1900 is not a leap year
		{2038, 1, 19, 3, 14, 8, 2147483648},
	}
	for _, tt := range tests {
		got := FromDateTime(tt.year, tt.month, tt.day, tt.hour, tt.minute, tt.second)
		if got != tt.want {
			t.Errorf("FromDateTime(%d, %d, %d, %d, %d, %d) = %d, want %d",
				tt.year, tt.month, tt.day, tt.hour, tt.minute, tt.second, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1970-01-01", 0},
		{"2023-11-14", 1699920000},
		{"2000-02-29", 951782400},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if err != nil {
			t.Errorf("ParseDate(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDate(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"2023",
		"2023-11",
		"2023-11-14-05",
		"year-11-14",
		"2023-13-01",
		"2023-00-01",
		"2023-11-32",
		"2023-11-00",
	} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q) error = nil, want error", in)
		}
	}
}
