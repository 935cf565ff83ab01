package prepare

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	yearsRe  = regexp.MustCompile(`(?i)(\d+)\s*year`)
	monthsRe = regexp.MustCompile(`(?i)(\d+)\s*month`)
)

// ParseDuration turns a free-text experience answer into years.
// "2 years" → 2, "2 years 6 months" → 3 (six months rounds up),
// "2 years 3 months" → 2, and a plain number parses as-is. The boolean
// separates a genuine zero ("0 years") from a blank or unparseable
// answer, so the audit only counts real defaults.
func ParseDuration(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if m := yearsRe.FindStringSubmatch(s); m != nil {
		years, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		if mm := monthsRe.FindStringSubmatch(s); mm != nil {
			months, err := strconv.Atoi(mm[1])
			if err == nil && months >= 6 {
				years++
			}
		}
		return float64(years), true
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// SanitizeDuration is ParseDuration with survey noise defaulting to 0.
func SanitizeDuration(s string) float64 {
	v, _ := ParseDuration(s)
	return v
}

// SanitizeYesNo turns a free-text yes/no answer into a boolean. Only a
// trimmed, case-insensitive "no" is false; a blank answer counts as
// missing and is also false. Everything else ("Yes", "Yes, extensively",
// "si") is true.
func SanitizeYesNo(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return !strings.EqualFold(s, "no")
}

// SanitizeIndicator parses a role-experience indicator. Numeric answers
// keep their value; free-text answers collapse to 0/1 via SanitizeYesNo.
func SanitizeIndicator(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if v, err := strconv.Atoi(s); err == nil {
		if v < 0 {
			return 0
		}
		return v
	}
	if SanitizeYesNo(s) {
		return 1
	}
	return 0
}

// roleOrder fixes the tie-break order for primary-role selection.
var roleOrder = []string{
	"requirements_engineer",
	"product_owner",
	"architect",
	"developer",
	"tester",
	"qa",
	"trainer",
	"manager",
}

// PrimaryRole picks the role indicator with the highest value, first
// match winning ties in the fixed role order. An all-zero vector maps
// to "none". Values must align with RoleNames().
func PrimaryRole(values []int) string {
	best, bestIdx := 0, -1
	for i, v := range values {
		if i >= len(roleOrder) {
			break
		}
		if v > best {
			best, bestIdx = v, i
		}
	}
	if bestIdx < 0 {
		return "none"
	}
	return roleOrder[bestIdx]
}

// RoleNames returns the fixed role order used by PrimaryRole.
func RoleNames() []string {
	out := make([]string, len(roleOrder))
	copy(out, roleOrder)
	return out
}

// Rescale divides every value by the column maximum, mapping the column
// onto [0,1]. A column whose maximum is 0 rescales to all zeros.
func Rescale(values []float64) []float64 {
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(values))
	if max == 0 {
		return out
	}
	for i, v := range values {
		out[i] = v / max
	}
	return out
}
