package client

import "strings"

// MatchName reports whether name matches the filter term. A term matches as a
// substring, then as a subsequence, and terms longer than two characters also
// match when dropping any one of their characters gives a substring.
func MatchName(name, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	name = strings.ToLower(name)

	if strings.Contains(name, term) || isSubsequence(term, name) {
		return true
	}

	runes := []rune(term)
	if len(runes) <= 2 {
		return false
	}
	for i := range runes {
		candidate := string(runes[:i]) + string(runes[i+1:])
		if strings.Contains(name, candidate) {
			return true
		}
	}
	return false
}

func isSubsequence(sub, s string) bool {
	rs := []rune(s)
	i := 0
	for _, r := range sub {
		for i < len(rs) && rs[i] != r {
			i++
		}
		if i == len(rs) {
			return false
		}
		i++
	}
	return true
}

// FilterRows returns the indexes of rows whose person name matches term.
func FilterRows(rows []Row, term string) []int {
	out := make([]int, 0, len(rows))
	for i, r := range rows {
		if MatchName(r.Entry.PersonName, term) {
			out = append(out, i)
		}
	}
	return out
}
