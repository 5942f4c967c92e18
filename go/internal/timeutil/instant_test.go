package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInstant(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{
			name: "utc suffix",
			raw:  "2025-01-01T00:00:00Z",
			want: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "missing zone is treated as utc",
			raw:  "2025-01-01T12:30:00",
			want: time.Date(2025, 1, 1, 12, 30, 0, 0, time.UTC),
		},
		{
			name: "missing zone with fraction",
			raw:  "2025-01-01T12:30:00.123456",
			want: time.Date(2025, 1, 1, 12, 30, 0, 123456000, time.UTC),
		},
		{
			name: "explicit offset is converted to utc",
			raw:  "2025-01-01T02:00:00+02:00",
			want: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "surrounding whitespace",
			raw:  "  2025-01-01T00:00:00Z ",
			want: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstant(tt.raw)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseInstantRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "not-a-date", "2025-13-01T00:00:00Z", "2025-01-01"} {
		t.Run(raw, func(t *testing.T) {
			got, err := ParseInstant(raw)
			assert.ErrorIs(t, err, ErrInvalidTimestamp)
			assert.True(t, got.IsZero())
		})
	}
}

func TestInstantOrZero(t *testing.T) {
	assert.True(t, InstantOrZero("not-a-date").IsZero())
	assert.Equal(t, 2025, InstantOrZero("2025-06-01T00:00:00").Year())
}
