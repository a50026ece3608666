package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCallback(t *testing.T) {
	cases := []struct {
		in     string
		action string
		id     int64
		ok     bool
	}{
		{"del_client:5", "del_client", 5, true},
		{"del_order:12", "del_order", 12, true},
		{"\fdel_client:5", "del_client", 5, true},
		{"ban_42", "ban", 42, true},
		{"unban_42", "unban", 42, true},
		{"delete_7", "delete", 7, true},
		{"login", "login", 0, true},
		{"forgot_password", "forgot_password", 0, true},
		{"change_phone", "change_phone", 0, true},
		{"delete_choose_client", "delete_choose_client", 0, true},
		{"back_to_main", "back_to_main", 0, true},
		{"del_client:abc", "", 0, false},
	}
	for _, tc := range cases {
		action, id, ok := splitCallback(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.action, action, "input %q", tc.in)
			assert.Equal(t, tc.id, id, "input %q", tc.in)
		}
	}
}

func TestTruncateLabel(t *testing.T) {
	assert.Equal(t, "short", truncateLabel("short"))

	got := truncateLabel(strings.Repeat("x", 60))
	assert.Len(t, []rune(got), maxButtonLabel)
	assert.Equal(t, "…", string([]rune(got)[maxButtonLabel-1:]))
}
