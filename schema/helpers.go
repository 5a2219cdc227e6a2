package schema

import "sort"

// ReportSuccess computes the aggregate success of a set of build results.
// The AND runs over attempted ecosystems only; an empty map is a success
// (nothing attempted, nothing failed).
func ReportSuccess(results map[Ecosystem]*BuildResult) bool {
	for _, r := range results {
		if r != nil && !r.Success {
			return false
		}
	}
	return true
}

// SortedEcosystems returns the keys of a result map in stable sorted order,
// for deterministic iteration when printing.
func SortedEcosystems(results map[Ecosystem]*BuildResult) []Ecosystem {
	keys := make([]Ecosystem, 0, len(results))
	for eco := range results {
		keys = append(keys, eco)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// TotalLines sums lines of code across all detected ecosystems.
func TotalLines(infos []LanguageInfo) int {
	total := 0
	for _, li := range infos {
		total += li.LinesOfCode
	}
	return total
}
