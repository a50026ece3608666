package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPhone(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"+998901234567", true},
		{"+1", true},
		{"998901234567", false},
		{"+", false},
		{"", false},
		{"+99890 123", false},
		{"+99890a123", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, ValidPhone(tt.in), "input %q", tt.in)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"+998901234567", "+998901234567", true},
		{"998901234567", "+998901234567", true},
		{"  998901234567 ", "+998901234567", true},
		{"abc", "+abc", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizePhone(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, "input %q", tt.in)
		}
	}
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "*********4567", MaskPhone("+998901234567"))
	assert.Equal(t, "+123", MaskPhone("+123"))
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "5", Digits("5kg"))
	assert.Equal(t, "120", Digits(" 1x2y0 "))
	assert.Equal(t, "", Digits("kg"))
}

func TestPasswordAndName(t *testing.T) {
	assert.True(t, ValidPassword("abcd"))
	assert.False(t, ValidPassword("abc"))
	assert.True(t, ValidName(" Al "))
	assert.False(t, ValidName(" A "))
}
