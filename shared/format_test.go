package shared

import "testing"

func TestFormatCompletionTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0分0秒"},
		{59, "0分59秒"},
		{59.9, "0分59秒"},
		{60, "1分0秒"},
		{93, "1分33秒"},
		{93.7, "1分33秒"},
		{3599, "59分59秒"},
		{3600, "60分0秒"},
		{-5, "0分0秒"},
	}

	for _, tc := range tests {
		got := FormatCompletionTime(tc.seconds)
		if got != tc.want {
			t.Errorf("FormatCompletionTime(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
