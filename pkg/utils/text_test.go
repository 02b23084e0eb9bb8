package utils

import (
	"testing"
)

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
	if got := Truncate("Übersicht", 3); got != "Übe..." {
		t.Errorf("multi-byte: got %s", got)
	}
}

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Carbon Black App Control", 2, "Carbon Black..."},
		{"Endpoint DLP", 5, "Endpoint DLP"},
		{"Endpoint DLP", 0, "Endpoint DLP"},
	}
	for _, tt := range tests {
		if got := TruncateWords(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateWords(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
