package harmonize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateTimeDimension(t *testing.T) {
	t.Run("covers range inclusive of both ends", func(t *testing.T) {
		days, err := GenerateTimeDimension(day(2025, time.May, 1), day(2025, time.May, 31), nil)
		require.NoError(t, err)
		require.Len(t, days, 31)
		assert.Equal(t, 20250501, days[0].TimeKey)
		assert.Equal(t, 20250531, days[30].TimeKey)
	})

	t.Run("truncates intra-day timestamps", func(t *testing.T) {
		start := time.Date(2025, time.May, 1, 23, 59, 0, 0, time.UTC)
		end := time.Date(2025, time.May, 2, 0, 1, 0, 0, time.UTC)
		days, err := GenerateTimeDimension(start, end, nil)
		require.NoError(t, err)
		assert.Len(t, days, 2)
	})

	t.Run("rejects inverted range", func(t *testing.T) {
		_, err := GenerateTimeDimension(day(2025, time.May, 2), day(2025, time.May, 1), nil)
		require.Error(t, err)
	})

	t.Run("single day range", func(t *testing.T) {
		days, err := GenerateTimeDimension(day(2025, time.May, 5), day(2025, time.May, 5), nil)
		require.NoError(t, err)
		require.Len(t, days, 1)
		assert.Equal(t, 20250505, days[0].TimeKey)
	})

	t.Run("calendar attributes", func(t *testing.T) {
		days, err := GenerateTimeDimension(day(2025, time.May, 5), day(2025, time.May, 11), nil)
		require.NoError(t, err)
		require.Len(t, days, 7)

		// 2025-05-05 is a Monday
		assert.Equal(t, 1, days[0].DayOfWeek)
		assert.False(t, days[0].IsWeekend)
		assert.Equal(t, 7, days[6].DayOfWeek)
		assert.True(t, days[6].IsWeekend)
		assert.True(t, days[5].IsWeekend) // Saturday

		assert.Equal(t, 2025, days[0].Year)
		assert.Equal(t, 2, days[0].Quarter)
		assert.Equal(t, 5, days[0].Month)
		assert.Equal(t, 19, days[0].Week)
	})
}

func TestPaydayFlag(t *testing.T) {
	t.Run("fifteenth and last day of month", func(t *testing.T) {
		days, err := GenerateTimeDimension(day(2025, time.April, 1), day(2025, time.April, 30), nil)
		require.NoError(t, err)

		var paydays []int
		for _, d := range days {
			if d.IsPayday {
				paydays = append(paydays, d.Date.Day())
			}
		}
		assert.Equal(t, []int{15, 30}, paydays)
	})

	t.Run("handles february", func(t *testing.T) {
		days, err := GenerateTimeDimension(day(2025, time.February, 28), day(2025, time.February, 28), nil)
		require.NoError(t, err)
		assert.True(t, days[0].IsPayday)
	})

	t.Run("handles leap february", func(t *testing.T) {
		days, err := GenerateTimeDimension(day(2024, time.February, 28), day(2024, time.February, 29), nil)
		require.NoError(t, err)
		assert.False(t, days[0].IsPayday)
		assert.True(t, days[1].IsPayday)
	})
}

func TestMegaSaleFlag(t *testing.T) {
	t.Run("twin dates", func(t *testing.T) {
		days, err := GenerateTimeDimension(day(2025, time.May, 4), day(2025, time.May, 6), nil)
		require.NoError(t, err)
		assert.False(t, days[0].IsMegaSaleDay)
		assert.True(t, days[1].IsMegaSaleDay) // 5.5
		assert.False(t, days[2].IsMegaSaleDay)
	})

	t.Run("configured holidays", func(t *testing.T) {
		days, err := GenerateTimeDimension(day(2025, time.February, 14), day(2025, time.February, 14), []string{"02-14"})
		require.NoError(t, err)
		assert.True(t, days[0].IsMegaSaleDay)

		days, err = GenerateTimeDimension(day(2025, time.February, 14), day(2025, time.February, 14), nil)
		require.NoError(t, err)
		assert.False(t, days[0].IsMegaSaleDay)
	})

	t.Run("black friday and cyber monday", func(t *testing.T) {
		// 2025: fourth Friday of November is the 28th, Cyber Monday Dec 1
		days, err := GenerateTimeDimension(day(2025, time.November, 27), day(2025, time.December, 1), nil)
		require.NoError(t, err)
		require.Len(t, days, 5)
		assert.False(t, days[0].IsMegaSaleDay) // Thu 27
		assert.True(t, days[1].IsMegaSaleDay)  // Fri 28
		assert.False(t, days[2].IsMegaSaleDay) // Sat 29
		assert.False(t, days[3].IsMegaSaleDay) // Sun 30
		assert.True(t, days[4].IsMegaSaleDay)  // Mon Dec 1
	})

	t.Run("black friday year with early november friday", func(t *testing.T) {
		// 2026: November 1st is a Sunday, fourth Friday is the 27th
		days, err := GenerateTimeDimension(day(2026, time.November, 27), day(2026, time.November, 30), nil)
		require.NoError(t, err)
		assert.True(t, days[0].IsMegaSaleDay)
		assert.True(t, days[3].IsMegaSaleDay)
	})
}
