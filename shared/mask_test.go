package shared

import "testing"

func TestMaskStudentID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"student123", "st******23"},
		{"abcdefgh", "ab****gh"},
		{"abcdefg", "a*****g"},
		{"abc", "a*c"},
		{"ab", "a*"},
		{"a", "a"},
		{"", ""},
		{"王小明同學考試號碼", "王小*****號碼"},
	}

	for _, tc := range tests {
		got := MaskStudentID(tc.id)
		if got != tc.want {
			t.Errorf("MaskStudentID(%q) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestMaskStudentName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Alexander", "A*******r"},
		{"Anna", "A**a"},
		{"王小明", "王*明"},
		{"小明", "小*"},
		{"明", "明"},
		{"", ""},
	}

	for _, tc := range tests {
		got := MaskStudentName(tc.name)
		if got != tc.want {
			t.Errorf("MaskStudentName(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
