package id

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	id := Generate()

	// Check format
	if !strings.HasPrefix(id, "video-") {
		t.Errorf("expected ID to start with 'video-', got %s", id)
	}
	if !Valid(id) {
		t.Errorf("generated ID %s should be valid", id)
	}

	// Check uniqueness
	id2 := Generate()
	if id == id2 {
		t.Error("expected different IDs for consecutive calls")
	}
}

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := Generate()
		if seen[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"video-1701432000-3f2a9c1b7d4e", true},
		{"job-1701432000-3f2a9c1b7d4e", false},
		{"video-1701432000", false},
		{"video--3f2a9c1b7d4e", false},
		{"video-17014x2000-3f2a9c1b7d4e", false},
		{"video-1701432000-3F2A9C1B7D4E", false},
		{"video-1701432000-../../etc/pa", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := Valid(tt.in); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
