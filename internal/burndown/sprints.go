package burndown

import (
	"slices"
	"strconv"
	"strings"

	"burndown-gen/internal/issue"
)

// ListSprints collects the distinct sprint labels present on stories and
// their tasks. If none is found anywhere, the configured default placeholder
// is returned as the only entry.
func ListSprints(groups map[string]*issue.StoryGroup, defaultSprint string) []string {
	seen := make(map[string]bool)

	for _, group := range groups {
		if group == nil || group.Story == nil {
			continue
		}
		if s := group.Story.Sprint; s != "" {
			seen[s] = true
		}
		for _, task := range group.Tasks {
			if task != nil && task.Sprint != "" {
				seen[task.Sprint] = true
			}
		}
	}

	if len(seen) == 0 {
		return []string{defaultSprint}
	}

	sprints := make([]string, 0, len(seen))
	for s := range seen {
		sprints = append(sprints, s)
	}
	sortSprints(sprints)
	return sprints
}

// sortSprints orders labels numeric-aware: when every label carries an
// integer token (e.g. "Sprint 5"), labels sort by that integer. Mixed sets
// fall back to plain lexicographic order.
func sortSprints(sprints []string) {
	numbers := make(map[string]int, len(sprints))
	allNumeric := true
	for _, s := range sprints {
		n, ok := extractNumber(s)
		if !ok {
			allNumeric = false
			break
		}
		numbers[s] = n
	}

	if !allNumeric {
		slices.Sort(sprints)
		return
	}

	slices.SortFunc(sprints, func(a, b string) int {
		if numbers[a] != numbers[b] {
			return numbers[a] - numbers[b]
		}
		return strings.Compare(a, b)
	})
}

// extractNumber returns the first integer token in a label.
func extractNumber(s string) (int, bool) {
	for _, part := range strings.Fields(s) {
		if n, err := strconv.Atoi(part); err == nil {
			return n, true
		}
	}
	return 0, false
}
