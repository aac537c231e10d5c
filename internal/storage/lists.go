package storage

import "strings"

// pushRecent moves v to the front of list, dropping older duplicates and
// anything past limit.
func pushRecent(list []string, v string, limit int) []string {
	out := make([]string, 0, min(len(list)+1, limit))
	out = append(out, v)
	for _, x := range list {
		if len(out) == limit {
			break
		}
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func removeValue(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
