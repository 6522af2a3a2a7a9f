package textutil

import (
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Big Play: 1v5?", "Big Play- 1v5"},
		{"  spaced   out\ttitle ", "spaced out title"},
		{"a/b\\c", "a-b-c"},
		{"line one\nline two\r\nthree", "line one line two three"},
		{"bell\a here", "bell here"},
		{"quote\"d <tag>|", "quoted tag"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"AwkwardHelplessSalamanderSwiftRage", "AwkwardHelplessSalamanderSwiftRage"},
		{"abc-DEF_123", "abc-DEF_123"},
		{"a b/c", "a_b_c"},
		{"  ", "unknown"},
		{"é", "unknown"},
	}
	for _, tt := range tests {
		if got := SanitizeToken(tt.in); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClipFileName(t *testing.T) {
	if got := ClipFileName("Insane clutch!", "Clip1"); got != "Insane clutch!_Clip1.mp4" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := ClipFileName("???", "Clip1"); got != "clip_Clip1.mp4" {
		t.Fatalf("unexpected name for empty title %q", got)
	}
	long := strings.Repeat("x", 200)
	got := ClipFileName(long, "id")
	if want := strings.Repeat("x", maxTitleRunes) + "_id.mp4"; got != want {
		t.Fatalf("expected truncated title, got %q", got)
	}
}
