package burndown

import (
	"context"
	"fmt"
	"strings"
	"time"

	"burndown-gen/internal/issue"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Algorithm selects one of the three burndown accounting policies.
type Algorithm int

const (
	StoryPercentage Algorithm = iota + 1
	TaskBased
	PipelineBased
)

func (a Algorithm) String() string {
	switch a {
	case StoryPercentage:
		return "story-percentage"
	case TaskBased:
		return "task-based"
	case PipelineBased:
		return "pipeline-based"
	default:
		return fmt.Sprintf("algorithm(%d)", int(a))
	}
}

// Algorithms lists every available policy.
var Algorithms = []Algorithm{StoryPercentage, TaskBased, PipelineBased}

// ParseAlgorithm accepts both the numeric and the named form.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "story", "story-percentage":
		return StoryPercentage, nil
	case "2", "task", "task-based":
		return TaskBased, nil
	case "3", "pipeline", "pipeline-based":
		return PipelineBased, nil
	default:
		return 0, fmt.Errorf("unknown algorithm %q", s)
	}
}

// sentinelTotal is the placeholder total when no included group carries any
// points, so a chart always has a nonzero scale. Consumers must treat it as
// a placeholder, not as real data.
const sentinelTotal = 100.0

// Point is one dated entry of a burndown series.
type Point struct {
	Date            string        `json:"date"`
	RemainingPoints float64       `json:"remainingPoints"`
	TotalPoints     float64       `json:"totalPoints"`
	Stories         []StoryDetail `json:"completedStoriesInfo,omitempty"`
	OpenTasks       []TaskDetail  `json:"openTasksInfo,omitempty"`
}

// StoryDetail is the per-story drill-down emitted by the story-percentage
// algorithm.
type StoryDetail struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	PercentComplete float64 `json:"percentComplete"`
	BurnedPoints    float64 `json:"burnedPoints"`
	Estimation      float64 `json:"estimation"`
	CompletedTasks  int     `json:"completedTasks"`
	TotalTasks      int     `json:"totalTasks"`
}

// TaskDetail is the per-task drill-down emitted by the task-based and
// pipeline-based algorithms.
type TaskDetail struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	ParentID    string  `json:"parentId,omitempty"`
	ParentTitle string  `json:"parentTitle,omitempty"`
	Estimation  float64 `json:"estimation"`
	Status      string  `json:"status,omitempty"`
}

// Calculate runs one algorithm over the grouping for every day in dates,
// keeping only groups whose story sprint equals the filter exactly. Any
// internal failure is recovered, logged, and reported as an empty series:
// callers must treat an empty series as "no data", never as a crash.
func Calculate(alg Algorithm, groups map[string]*issue.StoryGroup, dates []time.Time, sprint string, pipeline Pipeline) (points []Point) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("algorithm", alg.String()).Str("sprint", sprint).Interface("panic", r).Msg("Burndown calculation failed")
			points = nil
		}
	}()

	switch alg {
	case StoryPercentage:
		return calculateStoryPercentage(groups, dates, sprint)
	case TaskBased:
		return calculateTaskBased(groups, dates, sprint)
	case PipelineBased:
		return calculatePipelineBased(groups, dates, sprint, pipeline)
	default:
		log.Error().Int("algorithm", int(alg)).Msg("Unknown burndown algorithm")
		return nil
	}
}

// CalculateAll runs every algorithm concurrently against the same grouping
// snapshot. This is safe because algorithms never mutate their inputs.
func CalculateAll(ctx context.Context, groups map[string]*issue.StoryGroup, dates []time.Time, sprint string, pipeline Pipeline) (map[Algorithm][]Point, error) {
	results := make([][]Point, len(Algorithms))

	g, _ := errgroup.WithContext(ctx)
	for i, alg := range Algorithms {
		i, alg := i, alg
		g.Go(func() error {
			results[i] = Calculate(alg, groups, dates, sprint, pipeline)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	series := make(map[Algorithm][]Point, len(Algorithms))
	for i, alg := range Algorithms {
		series[alg] = results[i]
	}
	return series, nil
}

// inSprint reports whether a group participates in the run for the given
// sprint filter. The match is exact and case-sensitive.
func inSprint(group *issue.StoryGroup, sprint string) bool {
	return group != nil && group.Story != nil && group.Story.Sprint == sprint
}
