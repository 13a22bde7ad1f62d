package burndown

import (
	"strings"
	"time"

	"burndown-gen/internal/issue"
)

// pipelineAccount carries one tracked item for the pipeline-based algorithm.
type pipelineAccount struct {
	id         string
	item       *issue.Item
	estimation float64
	status     string
}

// calculatePipelineBased weighs each tracked item by its board column. A
// closed item counts as fully complete from its close date; an open item
// burns the configured fraction for its current status. Status is treated as
// date-invariant: only the closed/open state is reconstructed historically.
// Items without estimation are excluded from the total and from tracking.
func calculatePipelineBased(groups map[string]*issue.StoryGroup, dates []time.Time, sprint string, pipeline Pipeline) []Point {
	var accounts []pipelineAccount
	var totalPoints float64

	for _, id := range sortedGroupIDs(groups) {
		group := groups[id]
		if !inSprint(group, sprint) {
			continue
		}

		tracked := group.Tasks
		if len(tracked) == 0 {
			// A story without tasks is tracked as a one-task group.
			tracked = map[string]*issue.Item{id: group.Story}
		}

		for _, itemID := range sortedTaskIDs(tracked) {
			item := tracked[itemID]
			estimation := estimationOrZero(item)
			if estimation == 0 {
				continue
			}

			accounts = append(accounts, pipelineAccount{
				id:         itemID,
				item:       item,
				estimation: estimation,
				status:     strings.ToLower(strings.TrimSpace(item.Status)),
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
			weight := pipeline.WeightFor(acc.status)
			if acc.item.ClosedAsOf(date) {
				weight = 1.0
			}

			left := acc.estimation * (1 - weight)
			if left <= 0 {
				continue
			}
			remaining += left

			open = append(open, TaskDetail{
				ID:         acc.id,
				Title:      acc.item.Title,
				Estimation: acc.estimation,
				Status:     acc.status,
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
