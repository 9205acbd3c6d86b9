// Package search derives filtered views of the in-memory task list.
package search

import (
	"strings"

	"github.com/nhle/tasklite/internal/model"
)

// Filter returns the tasks whose title contains query, ignoring case and
// the query's surrounding whitespace. Input order is preserved. A blank
// query returns tasks itself, unchanged.
func Filter(tasks []model.Task, query string) []model.Task {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return tasks
	}

	matched := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), term) {
			matched = append(matched, t)
		}
	}
	return matched
}
