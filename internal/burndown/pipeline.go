package burndown

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StageWeight maps a workflow status name to a fractional completion weight.
type StageWeight struct {
	Name   string
	Weight float64
}

// Pipeline is the ordered board-column weight table used by the
// pipeline-based algorithm.
type Pipeline []StageWeight

// DefaultPipeline mirrors the default board columns.
func DefaultPipeline() Pipeline {
	return Pipeline{
		{Name: "Backlog", Weight: 0.0},
		{Name: "In Progress", Weight: 0.33},
		{Name: "To be reviewed", Weight: 0.67},
		{Name: "Done", Weight: 1.0},
	}
}

// WeightFor returns the completion weight in [0,1] for a status name.
// Matching is case-insensitive; unknown or empty statuses weigh 0.
func (p Pipeline) WeightFor(status string) float64 {
	target := strings.ToLower(strings.TrimSpace(status))
	if target == "" {
		return 0.0
	}
	for _, stage := range p {
		if strings.ToLower(stage.Name) == target {
			return stage.Weight
		}
	}
	return 0.0
}

// ParsePipeline decodes the JSON pair-list form used in configuration,
// e.g. [["Backlog",0.0],["Done",1.0]].
func ParsePipeline(raw string) (Pipeline, error) {
	var pairs [][]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil, fmt.Errorf("pipeline is not a JSON pair list: %w", err)
	}

	pipeline := make(Pipeline, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("pipeline entry %d: expected [name, weight] pair", i)
		}
		var stage StageWeight
		if err := json.Unmarshal(pair[0], &stage.Name); err != nil {
			return nil, fmt.Errorf("pipeline entry %d: name: %w", i, err)
		}
		if err := json.Unmarshal(pair[1], &stage.Weight); err != nil {
			return nil, fmt.Errorf("pipeline entry %d: weight: %w", i, err)
		}
		pipeline = append(pipeline, stage)
	}
	return pipeline, nil
}
