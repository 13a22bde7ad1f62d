package issue

import (
	"strings"
	"time"

	"burndown-gen/internal/github"

	"github.com/rs/zerolog/log"
)

// FieldConfig names the project custom fields this tool reads. The names are
// injected from configuration; nothing in the mapper hardcodes them.
type FieldConfig struct {
	IterationField string
	EstimateField  string
	StatusField    string
}

// Filters are optional include-lists applied at mapping time. Empty lists
// disable the corresponding filter.
type Filters struct {
	Labels     []string // lowercase label names to include
	IssueTypes []string // lowercase issue type names to include
}

// MapItems converts raw project item DTOs into the flat Item mapping. Items
// without issue content (draft items, PRs stripped by the query) are skipped.
func MapItems(dtos []github.ProjectItemDTO, fields FieldConfig, filters Filters) map[string]*Item {
	items := make(map[string]*Item)

	for _, dto := range dtos {
		if dto.Content == nil || dto.Content.ID == "" {
			continue
		}

		it := BuildItem(dto.Content)
		it.ApplyFieldValues(dto.FieldValues.Nodes, fields)

		if !passesLabelFilter(it.Labels, filters.Labels) {
			continue
		}
		if !passesTypeFilter(it.IssueType, filters.IssueTypes) {
			continue
		}

		items[it.ID] = it
	}

	return items
}

// BuildItem constructs an Item from raw issue content. Every extraction
// degrades to a safe default; malformed input never aborts the mapping.
func BuildItem(content *github.ContentDTO) *Item {
	it := &Item{
		ID:        content.ID,
		Title:     content.Title,
		State:     ParseState(content.State),
		Closed:    content.Closed,
		Labels:    content.Labels,
		Assignees: content.Assignees,
	}

	if t, err := github.ParseTime(content.CreatedAt); err == nil {
		it.CreatedAt = t
	} else {
		// createdAt is required downstream; fall back to now instead of zero.
		it.CreatedAt = time.Now()
	}

	if content.ClosedAt != "" {
		if t, err := github.ParseTime(content.ClosedAt); err == nil {
			it.ClosedAt = &t
		}
	}

	// The flags are OR-ed: none of them is trusted individually.
	if !it.Closed && (it.State == StateClosed || it.ClosedAt != nil) {
		it.Closed = true
	}

	if content.IssueType != nil {
		it.IssueType = content.IssueType.Name
	}
	if content.Parent != nil {
		it.ParentID = content.Parent.ID
	}

	for _, node := range content.TimelineItems.Nodes {
		ev := TimelineEvent{Type: EventType(node.TypeName)}
		if t, err := github.ParseTime(node.CreatedAt); err == nil {
			ev.CreatedAt = &t
		}
		it.Timeline = append(it.Timeline, ev)
	}

	if content.SubIssuesSummary != nil {
		it.Summary = &SubItemSummary{
			Total:            int(content.SubIssuesSummary.Total),
			Completed:        int(content.SubIssuesSummary.Completed),
			PercentCompleted: float64(content.SubIssuesSummary.PercentCompleted),
		}
	}

	if it.Closed && it.ClosedAt == nil {
		// Flag-only closure cannot be placed on any date; per-date checks
		// will treat the item as open. Surface it instead of hiding it.
		log.Warn().Str("id", it.ID).Str("title", it.Title).Msg("Item flagged closed without closedAt; per-date checks treat it as open")
	}

	return it
}

// ApplyFieldValues backfills sprint, estimation, status, and milestone from
// the generic custom-field records. Records for other fields are ignored.
func (it *Item) ApplyFieldValues(values []github.FieldValueDTO, fields FieldConfig) {
	for _, fv := range values {
		name := ""
		if fv.Field != nil {
			name = fv.Field.Name
		}

		if name == "" {
			// Iteration values sometimes omit field metadata; detect them by
			// shape (title + startDate + duration).
			if fv.Title != nil && fv.StartDate != nil && fv.Duration != nil {
				it.Sprint = *fv.Title
			}
			if fv.Milestone != nil {
				it.Milestone = fv.Milestone.Title
			}
			continue
		}

		switch name {
		case fields.IterationField:
			if fv.Title != nil {
				it.Sprint = *fv.Title
			}
		case fields.EstimateField:
			if fv.Number != nil {
				est := float64(*fv.Number)
				it.Estimation = &est
			}
		case fields.StatusField:
			if fv.Name != nil {
				it.Status = *fv.Name
			}
		}

		if fv.Milestone != nil {
			it.Milestone = fv.Milestone.Title
		}
	}
}

func passesLabelFilter(labels []string, include []string) bool {
	if len(include) == 0 {
		return true
	}
	set := make(map[string]bool, len(include))
	for _, l := range include {
		set[strings.ToLower(l)] = true
	}
	for _, l := range labels {
		if set[strings.ToLower(l)] {
			return true
		}
	}
	return false
}

func passesTypeFilter(issueType string, include []string) bool {
	if len(include) == 0 {
		return true
	}
	normalized := strings.ToLower(strings.TrimSpace(issueType))
	for _, t := range include {
		if strings.ToLower(t) == normalized {
			return true
		}
	}
	return false
}
