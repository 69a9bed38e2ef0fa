package validate

import (
	"strings"
	"testing"
)

func TestMessageText(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"valid", "hello there", false},
		{"empty", "", true},
		{"whitespace only", "   \t ", true},
		{"at limit", strings.Repeat("a", 512), false},
		{"over limit", strings.Repeat("a", 513), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := MessageText(tc.text)
			if tc.wantErr && err == nil {
				t.Errorf("expected error for %q", tc.text)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error for %q: %v", tc.text, err)
			}
		})
	}
}

func TestPlatformID(t *testing.T) {
	cases := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", "PR1001", false},
		{"digits only", "12345", false},
		{"empty", "", true},
		{"too short", "AB", true},
		{"too long", "ABCDEFGH12345", true},
		{"lowercase", "pr1001", true},
		{"punctuation", "PR-1001", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := PlatformID(tc.id)
			if tc.wantErr && err == nil {
				t.Errorf("expected error for %q", tc.id)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error for %q: %v", tc.id, err)
			}
		})
	}
}
