package places

import (
	"regexp"
	"strings"
)

var re_hours = regexp.MustCompile(`^\s*([A-Za-z]+):\s*(.*?)\s*$`)

var weekdays = map[string]bool{
	"monday":    true,
	"tuesday":   true,
	"wednesday": true,
	"thursday":  true,
	"friday":    true,
	"saturday":  true,
	"sunday":    true,
}

// Weekdays is the canonical display order for opening hours.
var Weekdays = []string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}

// ParseOpeningHours converts lines of the form "Monday: 9:00 AM – 5:00 PM" in to a map keyed by
// lower-cased weekday. Lines that don't start with a weekday are dropped. If no lines match the
// method returns nil rather than an empty map.
func ParseOpeningHours(lines []string) map[string]string {

	var hours map[string]string

	for _, ln := range lines {

		m := re_hours.FindStringSubmatch(ln)

		if m == nil {
			continue
		}

		day := strings.ToLower(m[1])

		if !weekdays[day] {
			continue
		}

		if hours == nil {
			hours = make(map[string]string)
		}

		hours[day] = m[2]
	}

	return hours
}
