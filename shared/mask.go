package shared

import "strings"

// MaskStudentID hides the middle of a student identifier before it leaves the
// service in public rankings. Ids of 8+ runes keep two runes on each side
// ("ab****yz"); 3-7 runes keep one on each side; anything shorter keeps only
// the first rune.
func MaskStudentID(id string) string {
	runes := []rune(id)
	switch {
	case len(runes) >= 8:
		return string(runes[:2]) + strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-2:])
	case len(runes) >= 3:
		return string(runes[:1]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1:])
	case len(runes) == 2:
		return string(runes[:1]) + "*"
	default:
		return id
	}
}

// MaskStudentName hides part of a display name: 3-rune names mask the middle
// rune, 2-rune names mask the second, longer names keep the first and last
// rune only. Single-rune names are left as is.
func MaskStudentName(name string) string {
	runes := []rune(name)
	switch {
	case len(runes) >= 4:
		return string(runes[:1]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1:])
	case len(runes) == 3:
		return string(runes[0]) + "*" + string(runes[2])
	case len(runes) == 2:
		return string(runes[0]) + "*"
	default:
		return name
	}
}
