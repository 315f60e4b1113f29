package logutil

import "testing"

func TestRedactKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "********"},
		{"short", "********"},
		{"12345678", "********"},
		{"sk-abcdefghijklmnop", "sk-a...mnop"},
	}
	for _, tt := range tests {
		if got := RedactKey(tt.in); got != tt.want {
			t.Errorf("RedactKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
