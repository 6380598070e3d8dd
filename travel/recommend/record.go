package recommend

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/breathebhutan/tashi/travel/datastore"
	"github.com/breathebhutan/tashi/travel/planner"
)

// DayRange is a record's declared trip length in days.
type DayRange struct {
	Min, Max int
}

// daysRe matches "7 days", "7-day", "7 to 9 days", "7 - 9 days".
var daysRe = regexp.MustCompile(`(\d+)(?:\s*(?:-|–|to)\s*(\d+))?[\s-]*day`)

// recordDays derives the record's duration range from its duration field,
// falling back to the first "N days" / "N-M days" pattern in the name or
// description. Records with no derivable duration are excluded from matching.
func recordDays(rec datastore.Record) (DayRange, bool) {
	switch v := rec["duration"].(type) {
	case float64:
		if v > 0 {
			d := int(v)
			return DayRange{Min: d, Max: d}, true
		}
	case string:
		if r, ok := parseDays(v); ok {
			return r, ok
		}
		// A bare number without the "days" suffix still counts here.
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return DayRange{Min: n, Max: n}, true
		}
	}
	if r, ok := parseDays(rec.Name()); ok {
		return r, ok
	}
	return parseDays(rec.Description())
}

func parseDays(s string) (DayRange, bool) {
	m := daysRe.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return DayRange{}, false
	}
	lo, err := strconv.Atoi(m[1])
	if err != nil || lo <= 0 {
		return DayRange{}, false
	}
	hi := lo
	if m[2] != "" {
		if n, err := strconv.Atoi(m[2]); err == nil && n >= lo {
			hi = n
		}
	}
	return DayRange{Min: lo, Max: hi}, true
}

// recordTags is the record's interest vocabulary: declared tag arrays plus
// canonical tags appearing in the name or description text.
func recordTags(rec datastore.Record) []string {
	seen := make(map[string]struct{})
	var tags []string
	add := func(tag string) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			return
		}
		if _, dup := seen[tag]; dup {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	for _, key := range []string{"interests", "tags", "highlights"} {
		for _, tag := range rec.Strings(key) {
			add(tag)
		}
	}
	text := strings.ToLower(rec.Name() + " " + rec.Description())
	for _, tag := range planner.CanonicalInterests {
		if strings.Contains(text, tag) {
			add(tag)
		}
	}
	return tags
}
