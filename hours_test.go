package places

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOpeningHours(t *testing.T) {
	t.Run("Parses a weekday line", func(t *testing.T) {
		hours := ParseOpeningHours([]string{"monday: 9:00 AM – 5:00 PM"})
		assert.Equal(t, map[string]string{"monday": "9:00 AM – 5:00 PM"}, hours)
	})

	t.Run("Lower-cases the weekday", func(t *testing.T) {
		hours := ParseOpeningHours([]string{
			"Monday: 9:00 AM – 5:00 PM",
			"Sunday: Closed",
		})

		assert.Equal(t, map[string]string{
			"monday": "9:00 AM – 5:00 PM",
			"sunday": "Closed",
		}, hours)
	})

	t.Run("Drops lines without a weekday prefix", func(t *testing.T) {
		hours := ParseOpeningHours([]string{
			"Closed all week",
			"Holiday: closed",
			"tuesday: 8:00 AM – 4:00 PM",
		})

		assert.Equal(t, map[string]string{"tuesday": "8:00 AM – 4:00 PM"}, hours)
	})

	t.Run("No matching lines is absent, not empty", func(t *testing.T) {
		assert.Nil(t, ParseOpeningHours([]string{"Closed all week"}))
		assert.Nil(t, ParseOpeningHours(nil))
	})
}
