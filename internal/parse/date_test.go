package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingDate(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	assert.NoError(t, err)

	testCases := []struct {
		name      string
		raw       string
		loc       *time.Location
		expected  time.Time
		expectErr bool
	}{
		{
			name:     "Epoch milliseconds",
			raw:      "1704067200000",
			loc:      time.UTC,
			expected: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Epoch milliseconds in location",
			raw:      "1704067200000",
			loc:      berlin,
			expected: time.Date(2024, 1, 1, 1, 0, 0, 0, berlin),
		},
		{
			name:     "Epoch seconds",
			raw:      "1704067200",
			loc:      time.UTC,
			expected: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "RFC3339",
			raw:      "2024-01-02T08:00:00Z",
			loc:      time.UTC,
			expected: time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "Local date time",
			raw:      "2024-01-03T09:15:00",
			loc:      berlin,
			expected: time.Date(2024, 1, 3, 9, 15, 0, 0, berlin),
		},
		{
			name:     "Date only with spaces",
			raw:      "  2024-01-04 ",
			loc:      nil,
			expected: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "Empty",
			raw:       "",
			expectErr: true,
		},
		{
			name:      "Garbage",
			raw:       "next tuesday",
			expectErr: true,
		},
		{
			name:      "Short number",
			raw:       "12345",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BookingDate(tc.raw, tc.loc)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.True(t, tc.expected.Equal(got), "expected %v, got %v", tc.expected, got)
		})
	}
}

func TestDayLabel(t *testing.T) {
	assert.Equal(t, "2024-01-01", DayLabel("1704067200000", time.UTC))
	assert.Equal(t, "2024-01-01", DayLabel("1704067200", time.UTC))
	assert.Equal(t, "unknown", DayLabel("unknown", time.UTC))
}
