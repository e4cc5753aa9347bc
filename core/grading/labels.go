package grading

import (
	"regexp"
	"strconv"
)

var numericTokenRegex = regexp.MustCompile(`^\d+$`)

// ResolveIndex maps a user-typed token to a 0-based problem index.
// An all-digit token is always read as a 1-based position, so a custom label
// made of digits only can never be matched (known limitation: positions win).
// Non-numeric tokens are matched exactly against the workbook's labels.
func (wb *Workbook) ResolveIndex(token string) (int, bool) {
	if numericTokenRegex.MatchString(token) {
		pos, err := strconv.Atoi(token)
		if err != nil || pos < 1 || pos > wb.ProblemCount {
			return 0, false
		}
		return pos - 1, true
	}
	if wb.Labels != nil {
		for i, label := range wb.Labels {
			if label == token {
				return i, true
			}
		}
	}
	return 0, false
}
