package burndown

import (
	"time"

	"burndown-gen/internal/issue"
)

// taskAccount carries a task with its effective estimation, resolved once at
// grouping time.
type taskAccount struct {
	id          string
	task        *issue.Item
	parentID    string
	parentTitle string
	estimation  float64
}

// calculateTaskBased flattens every task across the included stories. Tasks
// without their own estimation inherit an even split of the story estimation.
// The total is fixed before the date loop; only the remaining value varies as
// tasks close day by day.
func calculateTaskBased(groups map[string]*issue.StoryGroup, dates []time.Time, sprint string) []Point {
	var accounts []taskAccount
	var totalPoints float64

	for _, id := range sortedGroupIDs(groups) {
		group := groups[id]
		if !inSprint(group, sprint) {
			continue
		}

		storyEstimation := estimationOrZero(group.Story)
		taskCount := len(group.Tasks)

		var perTask float64
		if taskCount > 0 {
			perTask = storyEstimation / float64(taskCount)
		}

		for _, taskID := range sortedTaskIDs(group.Tasks) {
			task := group.Tasks[taskID]
			estimation := perTask
			if task.Estimation != nil {
				estimation = *task.Estimation
			}

			accounts = append(accounts, taskAccount{
				id:          taskID,
				task:        task,
				parentID:    id,
				parentTitle: group.Story.Title,
				estimation:  estimation,
			})
			totalPoints += estimation
		}
	}

	if totalPoints == 0 {
		totalPoints = sentinelTotal
	}

	points := make([]Point, 0, len(dates))
	for _, date := range dates {
		var remaining float64
		var open []TaskDetail

		for _, acc := range accounts {
			// A task contributes only once it exists and while it is open.
			if acc.task.CreatedAt.After(date) {
				continue
			}
			if acc.task.ClosedAsOf(date) {
				continue
			}

			remaining += acc.estimation
			open = append(open, TaskDetail{
				ID:          acc.id,
				Title:       acc.task.Title,
				ParentID:    acc.parentID,
				ParentTitle: acc.parentTitle,
				Estimation:  acc.estimation,
			})
		}

		points = append(points, Point{
			Date:            date.Format(dayFormat),
			RemainingPoints: remaining,
			TotalPoints:     totalPoints,
			OpenTasks:       open,
		})
	}

	return points
}
