package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrrizaldi/shortener-link/internal/shortener"
)

func mustTime(t *testing.T, v string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, v)
	require.NoError(t, err)
	return ts
}

func TestParseInterval(t *testing.T) {
	for _, iv := range Intervals() {
		got, err := ParseInterval(iv.String())
		require.NoError(t, err)
		assert.Equal(t, iv, got)
	}

	for _, bad := range []string{"", "2h", "1D", "week"} {
		_, err := ParseInterval(bad)
		assert.ErrorIs(t, err, ErrInvalidInterval, bad)
		assert.ErrorIs(t, err, shortener.ErrInvalidInput, bad)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		iv   Interval
		in   string
		want string
	}{
		{Interval6h, "2024-03-05T05:59:59Z", "2024-03-05T00:00:00Z"},
		{Interval6h, "2024-03-05T06:00:00Z", "2024-03-05T06:00:00Z"},
		{Interval15m, "2024-03-05T10:44:59Z", "2024-03-05T10:30:00Z"},
		{Interval30m, "2024-03-05T10:31:00Z", "2024-03-05T10:30:00Z"},
		{Interval1h, "2024-03-05T10:59:00Z", "2024-03-05T10:00:00Z"},
		{Interval12h, "2024-03-05T13:00:00Z", "2024-03-05T12:00:00Z"},
		{Interval1d, "2024-03-05T23:59:59Z", "2024-03-05T00:00:00Z"},
		{Interval1d, "2024-03-05T01:00:00+02:00", "2024-03-04T00:00:00Z"},
		// 2024-03-05 is a Tuesday; 2024-03-10 a Sunday.
		{Interval7d, "2024-03-05T10:00:00Z", "2024-03-04T00:00:00Z"},
		{Interval7d, "2024-03-10T23:00:00Z", "2024-03-04T00:00:00Z"},
		{Interval7d, "2024-03-11T00:00:00Z", "2024-03-11T00:00:00Z"},
		{Interval30d, "2024-02-29T12:00:00Z", "2024-02-01T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(string(tt.iv)+"/"+tt.in, func(t *testing.T) {
			got := tt.iv.Truncate(mustTime(t, tt.in))
			assert.Equal(t, mustTime(t, tt.want), got)
		})
	}
}

func TestTruncate_BoundaryBuckets(t *testing.T) {
	a := Interval6h.Truncate(mustTime(t, "2024-01-01T05:59:59Z"))
	b := Interval6h.Truncate(mustTime(t, "2024-01-01T06:00:00Z"))
	assert.NotEqual(t, a, b)
}

func TestWidthAndUnit(t *testing.T) {
	w, ok := Interval6h.Width()
	require.True(t, ok)
	assert.Equal(t, 6*time.Hour, w)
	_, ok = Interval6h.Unit()
	assert.False(t, ok)

	u, ok := Interval30d.Unit()
	require.True(t, ok)
	assert.Equal(t, UnitMonth, u)
	_, ok = Interval30d.Width()
	assert.False(t, ok)

	assert.Panics(t, func() { Interval("2h").Truncate(time.Now()) })
}
