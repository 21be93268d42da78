package core

import (
	"strings"
	"testing"
)

// TestNewSessionIDUniqueness tests that NewSessionID generates unique identifiers
func TestNewSessionIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[SessionID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewSessionID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestParseSessionID tests session ID parsing
func TestParseSessionID(t *testing.T) {
	valid := NewSessionID()

	tests := []struct {
		input    string
		expected SessionID
		hasError bool
	}{
		{valid.String(), valid, false},
		{"  " + valid.String() + " ", valid, false},
		{strings.ToUpper(valid.String()), valid, false},
		{"", "", true},
		{"   ", "", true},
		{"not-a-uuid", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSessionID(tt.input)
		if tt.hasError {
			if err == nil {
				t.Errorf("ParseSessionID(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSessionID(%q) unexpected error: %v", tt.input, err)
		}
		if got != tt.expected {
			t.Errorf("ParseSessionID(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
