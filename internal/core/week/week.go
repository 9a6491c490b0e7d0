// Package week handles the "YYYY-Www" identifiers entries are logged against.
//
// The week number is the count of started seven-day blocks since January 1st of
// the same year, which differs from ISO-8601 numbering near year boundaries.
package week

import (
	"fmt"
	"math"
	"regexp"
	"time"
)

const length = 7 * 24 * time.Hour

var pattern = regexp.MustCompile(`^\d{4}-W\d{2}$`)

// Current returns the identifier of the week containing now, in now's location.
func Current(now time.Time) string {
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	n := int(math.Ceil(float64(now.Sub(start)) / float64(length)))
	return fmt.Sprintf("%d-W%02d", now.Year(), n)
}

// Valid reports whether s looks like a week identifier.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

// InRange compares lexicographically and treats an empty bound as open.
func InRange(w, start, end string) bool {
	if start != "" && w < start {
		return false
	}
	if end != "" && w > end {
		return false
	}
	return true
}
