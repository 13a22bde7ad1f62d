package issue

// StoryGroup binds a story to its mapped child tasks. For orphan tasks the
// group is a self-reference: the task acts as its own story and only task.
type StoryGroup struct {
	Story *Item
	Tasks map[string]*Item
}

// CompletionPercent reports how much of the story is done, preferring the
// source-supplied summary over a locally computed closed-children ratio.
func (g *StoryGroup) CompletionPercent() float64 {
	if g == nil || g.Story == nil {
		return 0
	}
	if g.Story.Summary != nil && g.Story.Summary.PercentCompleted > 0 {
		return g.Story.Summary.PercentCompleted
	}
	if len(g.Tasks) == 0 {
		return 0
	}
	closed := 0
	for _, t := range g.Tasks {
		if t.Closed {
			closed++
		}
	}
	return float64(closed) / float64(len(g.Tasks)) * 100.0
}

// MapStoriesToTasks groups the flat item mapping into story groups.
//
// Seeding order matters: stories first, then tasks attached to a seeded
// parent, then any leftover task as its own singleton group. Items that are
// neither story nor task stay out of the grouping but remain in the flat map.
func MapStoriesToTasks(items map[string]*Item) map[string]*StoryGroup {
	groups := make(map[string]*StoryGroup)

	for id, it := range items {
		if it.IsStory() {
			groups[id] = &StoryGroup{
				Story: it,
				Tasks: make(map[string]*Item),
			}
		}
	}

	mapped := make(map[string]bool)
	for id, it := range items {
		if !it.IsTask() || it.ParentID == "" {
			continue
		}
		group, ok := groups[it.ParentID]
		if !ok {
			continue
		}
		group.Tasks[id] = it
		mapped[id] = true

		// Parent owns the child reference; the child only keeps its ParentID.
		group.Story.SubItemIDs = append(group.Story.SubItemIDs, id)
	}

	// Orphan tasks (missing or unmatched parent) become pseudo-stories so
	// task-only workflows still reach the algorithms.
	for id, it := range items {
		if !it.IsTask() || mapped[id] {
			continue
		}
		group, ok := groups[id]
		if !ok {
			group = &StoryGroup{
				Story: it,
				Tasks: make(map[string]*Item),
			}
			groups[id] = group
		}
		group.Tasks[id] = it
	}

	return groups
}
