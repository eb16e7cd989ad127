package ocr

import (
	"reflect"
	"testing"
)

func TestSplitLines(t *testing.T) {
	got := SplitLines("  WinMart \n\n TỔNG CỘNG: 3.250.000 VNĐ \n")
	want := []string{"WinMart", "TỔNG CỘNG: 3.250.000 VNĐ"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitLines = %q, want %q", got, want)
	}
}

func TestCleanModelText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"plain text", "plain text"},
		{"```\nfenced\n```", "fenced"},
		{"```text\nfenced\nmore\n```", "fenced\nmore"},
		{"  padded  ", "padded"},
	}
	for _, tt := range tests {
		if got := cleanModelText(tt.raw); got != tt.want {
			t.Errorf("cleanModelText(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
