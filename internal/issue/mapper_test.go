package issue

import (
	"encoding/json"
	"testing"

	"burndown-gen/internal/github"
)

var testFields = FieldConfig{
	IterationField: "Sprint #",
	EstimateField:  "Story Points",
	StatusField:    "Status",
}

func contentFromJSON(t *testing.T, raw string) *github.ContentDTO {
	t.Helper()
	var content github.ContentDTO
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		t.Fatalf("decoding test content: %v", err)
	}
	return &content
}

func TestBuildItem_ClosedFlagsAreORed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"ExplicitFlag", `{"id":"a","createdAt":"2024-01-01T00:00:00Z","closed":true}`, true},
		{"ClosedState", `{"id":"a","createdAt":"2024-01-01T00:00:00Z","state":"CLOSED"}`, true},
		{"ClosedAtOnly", `{"id":"a","createdAt":"2024-01-01T00:00:00Z","closedAt":"2024-01-02T00:00:00Z"}`, true},
		{"AllOpen", `{"id":"a","createdAt":"2024-01-01T00:00:00Z","state":"OPEN"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := BuildItem(contentFromJSON(t, tt.raw))
			if it.Closed != tt.want {
				t.Errorf("Closed = %v, want %v", it.Closed, tt.want)
			}
		})
	}
}

func TestBuildItem_UnparseableCreatedAtDefaults(t *testing.T) {
	it := BuildItem(contentFromJSON(t, `{"id":"a","createdAt":"not-a-date"}`))
	if it.CreatedAt.IsZero() {
		t.Error("expected a non-zero default for unparseable createdAt")
	}
}

func TestBuildItem_Timeline(t *testing.T) {
	raw := `{
		"id": "a",
		"createdAt": "2024-01-01T00:00:00Z",
		"closed": true,
		"closedAt": "2024-01-05T12:00:00Z",
		"timelineItems": {"nodes": [
			{"__typename": "ClosedEvent", "createdAt": "2024-01-02T08:00:00Z"},
			{"__typename": "ReopenedEvent", "createdAt": "2024-01-04T08:00:00Z"},
			{"__typename": "ClosedEvent", "createdAt": "garbage"}
		]}
	}`
	it := BuildItem(contentFromJSON(t, raw))

	if len(it.Timeline) != 3 {
		t.Fatalf("Timeline length = %d, want 3", len(it.Timeline))
	}
	if it.Timeline[0].Type != EventClosed || it.Timeline[0].CreatedAt == nil {
		t.Errorf("unexpected first event: %+v", it.Timeline[0])
	}
	if it.Timeline[1].Type != EventReopened {
		t.Errorf("second event type = %v, want ReopenedEvent", it.Timeline[1].Type)
	}
	if it.Timeline[2].CreatedAt != nil {
		t.Error("unparseable event timestamp should stay nil")
	}
}

func TestBuildItem_Summary(t *testing.T) {
	raw := `{
		"id": "a",
		"createdAt": "2024-01-01T00:00:00Z",
		"subIssuesSummary": {"total": "4", "completed": 2, "percentCompleted": "50"}
	}`
	it := BuildItem(contentFromJSON(t, raw))

	if it.Summary == nil {
		t.Fatal("expected a sub-item summary")
	}
	if it.Summary.Total != 4 || it.Summary.Completed != 2 || it.Summary.PercentCompleted != 50 {
		t.Errorf("Summary = %+v, want {4 2 50}", it.Summary)
	}
}

func TestApplyFieldValues(t *testing.T) {
	raw := `[
		{"field": {"name": "Sprint #"}, "title": "Sprint 3", "startDate": "2024-01-01", "duration": 14},
		{"field": {"name": "Story Points"}, "number": 5},
		{"field": {"name": "Status"}, "name": "In Progress"},
		{"field": {"name": "Unrelated"}, "name": "ignored"},
		{"milestone": {"title": "v1.0"}}
	]`
	var values []github.FieldValueDTO
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		t.Fatalf("decoding field values: %v", err)
	}

	it := &Item{ID: "a"}
	it.ApplyFieldValues(values, testFields)

	if it.Sprint != "Sprint 3" {
		t.Errorf("Sprint = %q, want %q", it.Sprint, "Sprint 3")
	}
	if it.Estimation == nil || *it.Estimation != 5 {
		t.Errorf("Estimation = %v, want 5", it.Estimation)
	}
	if it.Status != "In Progress" {
		t.Errorf("Status = %q, want %q", it.Status, "In Progress")
	}
	if it.Milestone != "v1.0" {
		t.Errorf("Milestone = %q, want %q", it.Milestone, "v1.0")
	}
}

func TestApplyFieldValues_ShapeBasedIterationFallback(t *testing.T) {
	// Iteration values occasionally omit field metadata; the shape
	// (title + startDate + duration) identifies them anyway.
	raw := `[{"title": "Sprint 7", "startDate": "2024-02-01", "duration": 14}]`
	var values []github.FieldValueDTO
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		t.Fatalf("decoding field values: %v", err)
	}

	it := &Item{ID: "a"}
	it.ApplyFieldValues(values, testFields)
	if it.Sprint != "Sprint 7" {
		t.Errorf("Sprint = %q, want %q", it.Sprint, "Sprint 7")
	}
}

func TestMapItems_SkipsEmptyContentAndAppliesFilters(t *testing.T) {
	raw := `[
		{"content": null},
		{"content": {"id": "keep", "createdAt": "2024-01-01T00:00:00Z", "labels": ["story"]}},
		{"content": {"id": "drop", "createdAt": "2024-01-01T00:00:00Z", "labels": ["chore"]}}
	]`
	var dtos []github.ProjectItemDTO
	if err := json.Unmarshal([]byte(raw), &dtos); err != nil {
		t.Fatalf("decoding items: %v", err)
	}

	items := MapItems(dtos, testFields, Filters{Labels: []string{"story"}})
	if len(items) != 1 {
		t.Fatalf("mapped %d items, want 1", len(items))
	}
	if _, ok := items["keep"]; !ok {
		t.Error("expected labeled item to pass the filter")
	}
}

func TestMapItems_TypeFilter(t *testing.T) {
	raw := `[
		{"content": {"id": "f", "createdAt": "2024-01-01T00:00:00Z", "issueType": {"name": "Feature"}}},
		{"content": {"id": "b", "createdAt": "2024-01-01T00:00:00Z", "issueType": {"name": "Bug"}}}
	]`
	var dtos []github.ProjectItemDTO
	if err := json.Unmarshal([]byte(raw), &dtos); err != nil {
		t.Fatalf("decoding items: %v", err)
	}

	items := MapItems(dtos, testFields, Filters{IssueTypes: []string{"feature"}})
	if len(items) != 1 {
		t.Fatalf("mapped %d items, want 1", len(items))
	}
	if _, ok := items["f"]; !ok {
		t.Error("expected Feature item to pass the type filter")
	}
}
