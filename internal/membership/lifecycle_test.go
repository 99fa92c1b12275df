package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsExpiredAt(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		date      time.Time
		tolerance int
		want      bool
	}{
		{
			name:      "end date in the future",
			date:      time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
			tolerance: 1,
			want:      false,
		},
		{
			name:      "end date today",
			date:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			tolerance: 1,
			want:      false,
		},
		{
			name:      "one day past with one day tolerance",
			date:      time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
			tolerance: 1,
			want:      false,
		},
		{
			name:      "two days past with one day tolerance",
			date:      time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
			tolerance: 1,
			want:      true,
		},
		{
			name:      "one day past with zero tolerance",
			date:      time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
			tolerance: 0,
			want:      true,
		},
		{
			name:      "end date today with zero tolerance",
			date:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			tolerance: 0,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsExpiredAt(tt.date, tt.tolerance, now))
		})
	}
}

func TestIsExpiredAtIgnoresTimeOfDay(t *testing.T) {
	// A membership ending late yesterday evening is one day past regardless
	// of when during the day the check runs.
	end := time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC)

	morning := time.Date(2025, 3, 10, 0, 1, 0, 0, time.UTC)
	evening := time.Date(2025, 3, 10, 23, 58, 0, 0, time.UTC)

	require.Equal(t, IsExpiredAt(end, 0, morning), IsExpiredAt(end, 0, evening))
	require.True(t, IsExpiredAt(end, 0, morning))
	require.False(t, IsExpiredAt(end, 1, morning))
}

func TestRenewalWindow(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	start, end, grace := RenewalWindow(now)

	require.Equal(t, now, start)
	require.Equal(t, time.Date(2025, 2, 14, 10, 0, 0, 0, time.UTC), end)
	require.Equal(t, time.Date(2025, 2, 17, 10, 0, 0, 0, time.UTC), grace)
}

func TestPendingEndDate(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 2, 14, 10, 0, 0, 0, time.UTC), PendingEndDate(now))
}
