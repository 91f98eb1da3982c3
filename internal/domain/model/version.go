// Package model holds pure helpers for model identifiers: version parsing and
// canonical-to-provider name mapping.
package model

import (
	"regexp"
	"strconv"
	"strings"
)

var versionRe = regexp.MustCompile(`\d+(?:\.\d+)*`)

// ParseVersion extracts the first dotted numeric run of id.
// "gpt-5.2.1" -> [5 2 1]; "gpt" -> nil, false.
func ParseVersion(id string) ([]int, bool) {
	m := versionRe.FindString(id)
	if m == "" {
		return nil, false
	}
	parts := strings.Split(m, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			// overflow on absurdly long digit runs
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

// VersionKey is ParseVersion with a missing version mapped to [0],
// so that ids without a version sort lowest.
func VersionKey(id string) []int {
	if v, ok := ParseVersion(id); ok {
		return v
	}
	return []int{0}
}

// CompareVersions compares two version tuples lexicographically.
// A shorter tuple that is a prefix of the longer one sorts first.
func CompareVersions(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
