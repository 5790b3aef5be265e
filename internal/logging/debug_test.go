package logging

import (
	"testing"
)

func TestDebugEnabled(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"empty", "", false},
		{"one", "1", true},
		{"true", "true", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOIPEN_DEBUG", tt.value)
			if got := DebugEnabled(); got != tt.want {
				t.Errorf("DebugEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDebugf(t *testing.T) {
	// Only ensures Debugf does not panic in either mode.
	t.Setenv("LOIPEN_DEBUG", "")
	Debugf("This should not appear: %s", "test")

	t.Setenv("LOIPEN_DEBUG", "1")
	Debugf("This should appear: %s\n", "test")
}
