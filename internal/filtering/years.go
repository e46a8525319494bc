package filtering

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	singleYear = regexp.MustCompile(`^(\d{4})$`)
	openYears  = regexp.MustCompile(`^(\d{4})\s*\+$`)
	yearSpan   = regexp.MustCompile(`^(\d{4})\s*(?:-|–|—|to)\s*(\d{4})$`)
)

type yearRange struct {
	from, to int
}

// parseYearRange understands "2015", "2015-2020" and "2015+". Anything else
// returns nil, which imposes no constraint.
func parseYearRange(s string) *yearRange {
	s = strings.ToLower(strings.TrimSpace(s))

	if m := singleYear.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		return &yearRange{from: year, to: year}
	}
	if m := openYears.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		return &yearRange{from: year, to: math.MaxInt}
	}
	if m := yearSpan.FindStringSubmatch(s); m != nil {
		from, _ := strconv.Atoi(m[1])
		to, _ := strconv.Atoi(m[2])
		if from > to {
			from, to = to, from
		}
		return &yearRange{from: from, to: to}
	}
	return nil
}

func (y *yearRange) contains(year int) bool {
	if y == nil {
		return true
	}
	return year >= y.from && year <= y.to
}
