// Package id provides unique identifier generation for compositions.
package id

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prefix starts every generated ID.
const Prefix = "video-"

// Generate creates a new unique composition ID.
// Format: video-<timestamp>-<random>
// Example: video-1701432000-3f2a9c1b7d4e
func Generate() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s%d-%s", Prefix, time.Now().Unix(), random[:12])
}

// Valid reports whether s has the shape produced by Generate.
// IDs are embedded in file names, so anything else is rejected.
func Valid(s string) bool {
	rest, ok := strings.CutPrefix(s, Prefix)
	if !ok {
		return false
	}
	ts, random, ok := strings.Cut(rest, "-")
	if !ok || ts == "" || len(random) != 12 {
		return false
	}
	for _, r := range ts {
		if r < '0' || r > '9' {
			return false
		}
	}
	for _, r := range random {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
