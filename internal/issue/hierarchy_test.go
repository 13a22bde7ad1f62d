package issue

import (
	"slices"
	"testing"
)

func TestMapStoriesToTasks_Grouping(t *testing.T) {
	items := map[string]*Item{
		"story-1": {ID: "story-1", Labels: []string{"story"}},
		"task-1":  {ID: "task-1", Labels: []string{"task"}, ParentID: "story-1"},
		"task-2":  {ID: "task-2", Labels: []string{"task"}, ParentID: "story-1"},
		"note-1":  {ID: "note-1"}, // neither story nor task
	}

	groups := MapStoriesToTasks(items)

	group, ok := groups["story-1"]
	if !ok {
		t.Fatal("expected a group for story-1")
	}
	if group.Story != items["story-1"] {
		t.Error("group story should be the story item itself")
	}
	if len(group.Tasks) != 2 {
		t.Fatalf("group has %d tasks, want 2", len(group.Tasks))
	}
	if _, ok := groups["note-1"]; ok {
		t.Error("unclassified items must not form groups")
	}

	subIDs := slices.Clone(items["story-1"].SubItemIDs)
	slices.Sort(subIDs)
	if !slices.Equal(subIDs, []string{"task-1", "task-2"}) {
		t.Errorf("SubItemIDs = %v, want [task-1 task-2]", subIDs)
	}
}

func TestMapStoriesToTasks_OrphanBecomesPseudoStory(t *testing.T) {
	items := map[string]*Item{
		"orphan-1": {ID: "orphan-1", Labels: []string{"task"}, ParentID: "missing"},
		"orphan-2": {ID: "orphan-2", Labels: []string{"task"}},
	}

	groups := MapStoriesToTasks(items)

	for _, id := range []string{"orphan-1", "orphan-2"} {
		group, ok := groups[id]
		if !ok {
			t.Fatalf("expected a pseudo-story group for %s", id)
		}
		if group.Story != items[id] {
			t.Errorf("%s: pseudo-story should be the task itself", id)
		}
		if len(group.Tasks) != 1 || group.Tasks[id] != items[id] {
			t.Errorf("%s: pseudo-story must contain itself as its only task", id)
		}
	}
}

func TestMapStoriesToTasks_KeysCoverStoriesAndOrphans(t *testing.T) {
	items := map[string]*Item{
		"s1": {ID: "s1", Labels: []string{"story"}},
		"s2": {ID: "s2", IssueType: "Feature"},
		"t1": {ID: "t1", Labels: []string{"task"}, ParentID: "s1"},
		"t2": {ID: "t2", Labels: []string{"task"}, ParentID: "nowhere"},
	}

	groups := MapStoriesToTasks(items)

	for _, id := range []string{"s1", "s2", "t2"} {
		if _, ok := groups[id]; !ok {
			t.Errorf("missing group for %s", id)
		}
	}
	if _, ok := groups["t1"]; ok {
		t.Error("mapped task must not form its own group")
	}
}

func TestCompletionPercent(t *testing.T) {
	tests := []struct {
		name  string
		group *StoryGroup
		want  float64
	}{
		{"NilGroup", nil, 0},
		{
			"SummaryWins",
			&StoryGroup{
				Story: &Item{Summary: &SubItemSummary{PercentCompleted: 75}},
				Tasks: map[string]*Item{"t": {Closed: true}},
			},
			75,
		},
		{
			"ClosedRatio",
			&StoryGroup{
				Story: &Item{},
				Tasks: map[string]*Item{
					"a": {Closed: true},
					"b": {Closed: false},
				},
			},
			50,
		},
		{"NoTasks", &StoryGroup{Story: &Item{}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.group.CompletionPercent(); got != tt.want {
				t.Errorf("CompletionPercent() = %v, want %v", got, tt.want)
			}
		})
	}
}
