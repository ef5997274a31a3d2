package search

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/denoland-id/denoid/pkg/provider"
)

// Normalize trims and case-folds a query so equivalent queries compare equal
func Normalize(query string) string {
	return fold(strings.TrimSpace(query))
}

// fold applies Unicode case folding
func fold(s string) string {
	return cases.Fold().String(s)
}

// Matches reports whether m matches query. It never fails and has no side effects.
func Matches(m provider.Module, query string) bool {
	return matchesNormalized(m, Normalize(query))
}

func matchesNormalized(m provider.Module, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(fold(m.Name), needle) || strings.Contains(fold(m.Desc), needle)
}

// Filter returns the modules matching query in their original order.
// An empty query returns modules unchanged. The result is never nil.
func Filter(modules []provider.Module, query string) []provider.Module {
	needle := Normalize(query)
	if needle == "" {
		if modules == nil {
			return []provider.Module{}
		}
		return modules
	}

	out := make([]provider.Module, 0)
	for _, m := range modules {
		if matchesNormalized(m, needle) {
			out = append(out, m)
		}
	}
	return out
}
