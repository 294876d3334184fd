package models

import (
	"regexp"
	"strconv"
	"strings"
)

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?$`)

// ParseDurationMinutes converts the upstream's ISO-8601 duration subset
// ("PT13H45M", "PT55M", "PT20H") to total minutes. Durations of a day or
// more arrive as hour counts, never with a day component. The bare string
// "PT" matches the grammar and yields 0; callers decide whether a
// zero-minute flight is believable.
func ParseDurationMinutes(s string) (int, bool) {
	m := isoDurationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}

	minutes := 0
	if m[1] != "" {
		h, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		minutes += h * 60
	}
	if m[2] != "" {
		mm, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, false
		}
		minutes += mm
	}

	return minutes, true
}
