package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStrictDistance(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"zero", 0, "0 seconds"},
		{"one second", time.Second, "1 second"},
		{"seconds", 45 * time.Second, "45 seconds"},
		{"one minute", time.Minute, "1 minute"},
		{"minutes round", 10*time.Minute + 40*time.Second, "11 minutes"},
		{"hours", 5*time.Hour + 10*time.Minute, "5 hours"},
		{"one day", 24 * time.Hour, "1 day"},
		{"days", 3*24*time.Hour + 2*time.Hour, "3 days"},
		{"months", 65 * 24 * time.Hour, "2 months"},
		{"years", 2 * 365 * 24 * time.Hour, "2 years"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StrictDistance(base, base.Add(tt.d)))
			assert.Equal(t, tt.want, StrictDistance(base.Add(tt.d), base), "direction must not matter")
		})
	}
}
