package burndown

import (
	"slices"
	"time"

	"burndown-gen/internal/issue"
)

// storyAccount is the per-story accounting state fixed before the date loop.
type storyAccount struct {
	id             string
	story          *issue.Item
	tasks          map[string]*issue.Item
	estimation     float64
	subTasks       int
	taskTotal      float64 // sum of the tasks' own estimations
	completedKnown int     // source-reported completed count, informational
}

// calculateStoryPercentage burns each story proportionally to its tasks'
// completion. Story weight is the story's own estimation, or the sum of its
// tasks' estimations when the story itself is unestimated. Zero-weight
// stories are excluded from the total.
func calculateStoryPercentage(groups map[string]*issue.StoryGroup, dates []time.Time, sprint string) []Point {
	var totalPoints float64
	var accounts []storyAccount

	for _, id := range sortedGroupIDs(groups) {
		group := groups[id]
		if !inSprint(group, sprint) {
			continue
		}

		var taskTotal float64
		for _, task := range group.Tasks {
			taskTotal += estimationOrZero(task)
		}

		estimation := taskTotal
		if group.Story.Estimation != nil {
			estimation = *group.Story.Estimation
		}
		if estimation == 0 {
			continue
		}

		subTasks := len(group.Tasks)
		completed := 0
		if s := group.Story.Summary; s != nil {
			if s.Total > 0 {
				subTasks = s.Total
			}
			completed = s.Completed
		}

		totalPoints += estimation
		accounts = append(accounts, storyAccount{
			id:             id,
			story:          group.Story,
			tasks:          group.Tasks,
			estimation:     estimation,
			subTasks:       subTasks,
			taskTotal:      taskTotal,
			completedKnown: completed,
		})
	}

	if totalPoints == 0 {
		totalPoints = sentinelTotal
	}

	points := make([]Point, 0, len(dates))
	for _, date := range dates {
		remaining := totalPoints
		details := make([]StoryDetail, 0, len(accounts))

		for _, acc := range accounts {
			completedCount := 0
			var completedPoints float64
			for _, taskID := range sortedTaskIDs(acc.tasks) {
				task := acc.tasks[taskID]
				if task.ClosedAsOf(date) {
					completedCount++
					completedPoints += estimationOrZero(task)
				}
			}

			var percent float64
			switch {
			case acc.taskTotal > 0:
				percent = completedPoints / acc.taskTotal * 100
			case acc.subTasks > 0:
				percent = float64(completedCount) / float64(acc.subTasks) * 100
			case acc.story.ClosedAsOf(date):
				percent = 100
			}

			burned := acc.estimation * (percent / 100)
			remaining -= burned

			details = append(details, StoryDetail{
				ID:              acc.id,
				Title:           acc.story.Title,
				PercentComplete: percent,
				BurnedPoints:    burned,
				Estimation:      acc.estimation,
				CompletedTasks:  completedCount,
				TotalTasks:      acc.subTasks,
			})
		}

		points = append(points, Point{
			Date:            date.Format(dayFormat),
			RemainingPoints: max(0, remaining),
			TotalPoints:     totalPoints,
			Stories:         details,
		})
	}

	return points
}

func estimationOrZero(it *issue.Item) float64 {
	if it == nil || it.Estimation == nil {
		return 0
	}
	return *it.Estimation
}

// sortedGroupIDs fixes the iteration order so detail lists are deterministic.
func sortedGroupIDs(groups map[string]*issue.StoryGroup) []string {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func sortedTaskIDs(tasks map[string]*issue.Item) []string {
	ids := make([]string, 0, len(tasks))
	for id := range tasks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
