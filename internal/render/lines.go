package render

import (
	"strconv"
	"strings"
)

const (
	// maxLine is the highest line number that can be highlighted.
	maxLine = 100000
	// maxLineSpan bounds a single "a-b" range.
	maxLineSpan = 10000
)

// ParseLines reads a line list such as "3,7-9" into a set of 1-based
// line numbers. Malformed parts are skipped, as are numbers above maxLine.
func ParseLines(s string) map[int]bool {
	hl := map[int]bool{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		if !isRange {
			if n, ok := lineNumber(part); ok {
				hl[n] = true
			}
			continue
		}
		a, errA := strconv.Atoi(strings.TrimSpace(lo))
		b, errB := strconv.Atoi(strings.TrimSpace(hi))
		if errA != nil || errB != nil {
			continue
		}
		if a > b {
			a, b = b, a
		}
		a, b = max(a, 1), min(b, maxLine)
		if a > b {
			continue
		}
		b = min(b, a+maxLineSpan)
		for i := a; i <= b; i++ {
			hl[i] = true
		}
	}
	return hl
}

func lineNumber(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxLine {
		return 0, false
	}
	return n, true
}
