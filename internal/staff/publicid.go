package staff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var rolePrefixes = map[string]string{
	RoleDoctor:       "D",
	RolePatient:      "P",
	RoleReceptionist: "R",
}

var nonAlpha = regexp.MustCompile(`[^A-Za-z]`)

// PrefixForRole returns the single-letter public-ID prefix for a role, "U" when unknown.
func PrefixForRole(role string) string {
	if p, ok := rolePrefixes[role]; ok {
		return p
	}
	return "U"
}

// CleanName strips every character outside A-Z and a-z.
func CleanName(name string) string {
	return nonAlpha.ReplaceAllString(name, "")
}

// NextPublicID computes the next identifier for prefix given the ids already allocated.
// The sequence is one past the highest "<prefix>-<n>-" number, padded to at least two digits.
func NextPublicID(prefix string, existing []string, name string) string {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `-(\d+)-`)
	highest := 0
	for _, id := range existing {
		m := pattern.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s-%02d-%s", prefix, highest+1, CleanName(strings.TrimSpace(name)))
}
