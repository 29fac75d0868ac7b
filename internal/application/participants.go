package application

import "strings"

// ParseParticipants splits a comma separated list of emails. Entries are
// trimmed, blanks dropped, and repeats removed keeping the first occurrence.
func ParseParticipants(raw string) []string {
	fields := strings.Split(raw, ",")
	return uniqueStrings(fields)
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
