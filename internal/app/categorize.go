package app

import "strings"

// Categorize assigns a test name to a category by case-insensitive substring
// match, checked in order: "unit", "integration", "performance".
//
// Names matching none of them land in Unit. That catch-all silently
// misclassifies e.g. "export_roundtrip" as a unit test; it is kept because
// existing dashboards depend on the counts. Platform is never derived from a
// name, only from platform probe artifacts.
func Categorize(name string) Category {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "unit"):
		return CategoryUnit
	case strings.Contains(lower, "integration"):
		return CategoryIntegration
	case strings.Contains(lower, "performance"):
		return CategoryPerformance
	default:
		return CategoryUnit
	}
}
