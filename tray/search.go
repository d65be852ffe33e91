package tray

import (
	"strings"

	"golang.org/x/text/cases"

	"launchtray/model"
)

// Filter returns the entries whose title contains query, compared under
// Unicode case folding. Hidden entries never match. An empty query returns
// every visible entry. The input is not modified.
func Filter(entries []model.AppEntry, query string) []model.AppEntry {
	visible := model.Visible(entries)
	if query == "" {
		return visible
	}
	// A Caser keeps state and must not be shared between goroutines.
	fold := cases.Fold()
	needle := fold.String(query)

	out := make([]model.AppEntry, 0, len(visible))
	for _, e := range visible {
		if strings.Contains(fold.String(e.Title), needle) {
			out = append(out, e)
		}
	}
	return out
}
