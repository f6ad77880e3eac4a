package brand

import "testing"

func TestNextVersion(t *testing.T) {
	tests := []struct {
		name    string
		current string
		changed []string
		want    string
	}{
		{"colors bumps minor", "1.0.0", []string{"colors"}, "1.1.0"},
		{"typography bumps minor", "2.3.7", []string{"typography"}, "2.4.7"},
		{"assets bumps minor", "1.1.0", []string{"assets"}, "1.2.0"},
		{"compliance bumps minor", "1.5.2", []string{"compliance"}, "1.6.2"},
		{"layout does not bump", "1.4.0", []string{"layout"}, "1.4.0"},
		{"metadata does not bump", "1.4.0", []string{"metadata"}, "1.4.0"},
		{"mixed sections bump once", "1.0.0", []string{"layout", "colors", "typography"}, "1.1.0"},
		{"no changes", "1.2.3", nil, "1.2.3"},
		{"major never changes", "9.9.1", []string{"colors"}, "9.10.1"},
		{"malformed version resets", "banana", []string{"colors"}, "1.1.0"},
		{"wrong segment count resets", "1.2", []string{"assets"}, "1.1.0"},
		{"non-numeric minor resets", "1.x.0", []string{"colors"}, "1.1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextVersion(tt.current, tt.changed)
			if got != tt.want {
				t.Errorf("NextVersion(%q, %v) = %q, want %q", tt.current, tt.changed, got, tt.want)
			}
		})
	}
}
