package issue

import (
	"strings"
	"time"
)

// State is the coarse open/closed state reported by the API.
type State string

const (
	StateOpen   State = "OPEN"
	StateClosed State = "CLOSED"
)

// ParseState normalizes a raw state string. Anything unrecognized maps to
// OPEN rather than failing.
func ParseState(s string) State {
	if strings.EqualFold(strings.TrimSpace(s), string(StateClosed)) {
		return StateClosed
	}
	return StateOpen
}

// EventType tags a timeline event as a close or a reopen.
type EventType string

const (
	EventClosed   EventType = "ClosedEvent"
	EventReopened EventType = "ReopenedEvent"
)

// TimelineEvent is one close/reopen transition from the issue history.
type TimelineEvent struct {
	Type      EventType
	CreatedAt *time.Time
}

// SubItemSummary aggregates child completion as reported by the source.
type SubItemSummary struct {
	Total            int
	Completed        int
	PercentCompleted float64
}

// Item is the normalized representation of a fetched issue, story, or task.
// All raw payload shapes are resolved at construction; downstream code never
// sees the wire format.
type Item struct {
	ID        string
	Title     string
	State     State
	CreatedAt time.Time
	ClosedAt  *time.Time
	Closed    bool
	IssueType string
	ParentID  string // empty means top-level
	Labels    []string
	Assignees []string
	Timeline  []TimelineEvent
	Summary   *SubItemSummary

	// Owned references to mapped child tasks, filled by the hierarchy mapper.
	SubItemIDs []string

	// Backfilled from project field values.
	Sprint     string
	Status     string
	Milestone  string
	Estimation *float64 // nil is distinct from zero
}

// labelSet returns the item's labels lowercased for case-insensitive checks.
func (it *Item) labelSet() map[string]bool {
	set := make(map[string]bool, len(it.Labels))
	for _, l := range it.Labels {
		set[strings.ToLower(l)] = true
	}
	return set
}

// IsStory reports whether the item is a story/feature. Label checks take
// precedence over the type and estimation fallbacks.
func (it *Item) IsStory() bool {
	labels := it.labelSet()

	if labels["story"] || labels["user story"] || labels["feature"] {
		return true
	}

	if it.IssueType == "Feature" && it.ParentID == "" {
		return true
	}

	// Fallback: estimated top-level items that are not explicitly tasks.
	return it.Estimation != nil && it.ParentID == "" && !labels["task"]
}

// IsTask reports whether the item is a task/sub-issue.
func (it *Item) IsTask() bool {
	if it.labelSet()["task"] {
		return true
	}
	return it.IssueType == "Task" && it.ParentID != ""
}

// ClosedAsOf reports whether the item counted as closed at midnight of the
// given day. The current closed flag only reflects present state; history is
// replayed through the close/reopen timeline to find the last transition on
// or before the day.
func (it *Item) ClosedAsOf(day time.Time) bool {
	if it == nil || !it.Closed || it.ClosedAt == nil {
		return false
	}

	day = Midnight(day)
	if Midnight(*it.ClosedAt).After(day) {
		return false
	}

	// Keep the last event in timeline order whose day is <= the target day.
	var last *TimelineEvent
	for i := range it.Timeline {
		ev := &it.Timeline[i]
		if ev.CreatedAt == nil {
			continue
		}
		if !Midnight(*ev.CreatedAt).After(day) {
			last = ev
		}
	}

	if last != nil && last.Type == EventReopened {
		return false
	}
	return true
}

// Midnight truncates a timestamp to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
