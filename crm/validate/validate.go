// Package validate holds the input contracts shared by conversation flows
// and free-form record entry.
package validate

import "strings"

// MinPasswordLen is the minimum accepted password length.
const MinPasswordLen = 4

// MinNameLen is the minimum accepted full-name length after trimming.
const MinNameLen = 2

// ValidPhone reports whether s is a strict international phone:
// a leading '+' followed by one or more digits.
func ValidPhone(s string) bool {
	if len(s) < 2 || s[0] != '+' {
		return false
	}
	return allDigits(s[1:])
}

// NormalizePhone trims s, prefixes bare digits with '+', and reports whether
// the result is a valid phone.
func NormalizePhone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if s[0] != '+' {
		s = "+" + s
	}
	return s, ValidPhone(s)
}

// ValidPassword reports whether p satisfies the minimum length contract.
func ValidPassword(p string) bool {
	return len(p) >= MinPasswordLen
}

// ValidName reports whether the trimmed name is long enough.
func ValidName(s string) bool {
	return len(strings.TrimSpace(s)) >= MinNameLen
}

// MaskPhone hides all but the last four characters of phone with '*'.
// Short values are returned unchanged.
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}

// Digits returns only the decimal digits of s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
