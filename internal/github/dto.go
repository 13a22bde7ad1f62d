package github

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ProjectItemDTO represents a single item node in the Projects V2 response.
type ProjectItemDTO struct {
	Type        string         `json:"type"`
	Content     *ContentDTO    `json:"content"`
	FieldValues FieldValuesDTO `json:"fieldValues"`
}

// ContentDTO is the issue content embedded in a project item.
type ContentDTO struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	State         string        `json:"state"`
	CreatedAt     string        `json:"createdAt"`
	ClosedAt      string        `json:"closedAt"`
	Closed        bool          `json:"closed"`
	IssueType     *IssueTypeDTO `json:"issueType"`
	Parent        *ParentDTO    `json:"parent"`
	Labels        NameList      `json:"labels"`
	Assignees     LoginList     `json:"assignees"`
	TimelineItems struct {
		Nodes []TimelineItemDTO `json:"nodes"`
	} `json:"timelineItems"`
	SubIssues struct {
		Nodes []SubIssueRefDTO `json:"nodes"`
	} `json:"subIssues"`
	SubIssuesSummary *SubIssuesSummaryDTO `json:"subIssuesSummary"`
}

// IssueTypeDTO carries the issue type classification (e.g. "Feature", "Task").
type IssueTypeDTO struct {
	Name string `json:"name"`
}

// ParentDTO is a reference to the containing issue.
type ParentDTO struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SubIssueRefDTO is a shallow reference to a child issue.
type SubIssueRefDTO struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// TimelineItemDTO is a close/reopen event from the issue timeline.
type TimelineItemDTO struct {
	TypeName  string `json:"__typename"`
	CreatedAt string `json:"createdAt"`
}

// SubIssuesSummaryDTO aggregates child completion. GitHub occasionally returns
// these counters as numeric strings, so all fields go through Number.
type SubIssuesSummaryDTO struct {
	Total            Number `json:"total"`
	Completed        Number `json:"completed"`
	PercentCompleted Number `json:"percentCompleted"`
}

// FieldValuesDTO wraps the fieldValues connection.
type FieldValuesDTO struct {
	Nodes []FieldValueDTO `json:"nodes"`
}

// FieldValueDTO is one typed custom-field value. Only the variant that matches
// the underlying field type is populated; everything else stays nil.
type FieldValueDTO struct {
	Field     *FieldDefDTO  `json:"field"`
	Title     *string       `json:"title"`     // iteration value
	StartDate *string       `json:"startDate"` // iteration value
	Duration  *int          `json:"duration"`  // iteration value
	Name      *string       `json:"name"`      // single-select value
	Number    *Number       `json:"number"`    // number value
	Date      *string       `json:"date"`      // date value
	Milestone *MilestoneDTO `json:"milestone"`
}

// FieldDefDTO identifies which project field a value belongs to.
type FieldDefDTO struct {
	Name string `json:"name"`
}

// MilestoneDTO is a milestone reference inside a field value.
type MilestoneDTO struct {
	Title string `json:"title"`
}

// Number decodes from a JSON number, a numeric string, or null. Anything
// unparseable decodes to zero instead of failing the whole payload.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

// NameList decodes labels from either a bare array (strings or {name} objects)
// or the GraphQL connection shape {"nodes":[{"name":...}]}.
type NameList []string

func (l *NameList) UnmarshalJSON(data []byte) error {
	*l = decodeWrappedList(data, "name")
	return nil
}

// LoginList is the assignee counterpart of NameList, keyed by "login".
type LoginList []string

func (l *LoginList) UnmarshalJSON(data []byte) error {
	*l = decodeWrappedList(data, "login")
	return nil
}

// decodeWrappedList tolerates every shape the API (or a cached snapshot) has
// been observed to produce. Malformed entries are skipped, never fatal.
func decodeWrappedList(data []byte, key string) []string {
	var out []string

	var wrapped struct {
		Nodes []json.RawMessage `json:"nodes"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Nodes != nil {
		for _, raw := range wrapped.Nodes {
			if name, ok := decodeNamed(raw, key); ok {
				out = append(out, name)
			}
		}
		return out
	}

	var bare []json.RawMessage
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil
	}
	for _, raw := range bare {
		if name, ok := decodeNamed(raw, key); ok {
			out = append(out, name)
		}
	}
	return out
}

func decodeNamed(raw json.RawMessage, key string) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}
	inner, ok := obj[key]
	if !ok {
		return "", false
	}
	if err := json.Unmarshal(inner, &s); err != nil {
		return "", false
	}
	return s, true
}

// ParseTime parses the ISO-8601 timestamps GitHub emits ("Z" suffixed).
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
