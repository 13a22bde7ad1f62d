package github

import (
	"fmt"
	"strings"
)

// buildItemsQuery renders the paginated Projects V2 items query for the
// configured owner. GitHub exposes projects under either an organization or a
// user root depending on account type.
func buildItemsQuery(cfg Config, cursor string) string {
	after := "after: null"
	if cursor != "" {
		after = fmt.Sprintf("after: %q", cursor)
	}

	ownerRoot := "organization"
	if strings.EqualFold(cfg.OwnerType, "user") {
		ownerRoot = "user"
	}

	return fmt.Sprintf(`
	{
	  %s(login: %q) {
	    projectV2(number: %d) {
	      items(first: 100, %s) {
	        nodes {
	          type
	          content {
	            ... on Issue {
	              id
	              title
	              state
	              createdAt
	              closed
	              closedAt
	              issueType { name }
	              parent { id title }
	              labels(first: 10) { nodes { name } }
	              assignees(first: 10) { nodes { login } }
	              timelineItems(first: 100, itemTypes: [CLOSED_EVENT, REOPENED_EVENT]) {
	                nodes {
	                  __typename
	                  ... on ClosedEvent { createdAt }
	                  ... on ReopenedEvent { createdAt }
	                }
	              }
	              subIssues(first: 100) { nodes { id title } }
	              subIssuesSummary { completed percentCompleted total }
	            }
	          }
	          fieldValues(first: 100) {
	            nodes {
	              ... on ProjectV2ItemFieldIterationValue {
	                title
	                startDate
	                duration
	                field { ... on ProjectV2IterationField { name } }
	              }
	              ... on ProjectV2ItemFieldSingleSelectValue {
	                name
	                field { ... on ProjectV2SingleSelectField { name } }
	              }
	              ... on ProjectV2ItemFieldNumberValue {
	                number
	                field { ... on ProjectV2Field { name } }
	              }
	              ... on ProjectV2ItemFieldDateValue {
	                date
	                field { ... on ProjectV2Field { name } }
	              }
	              ... on ProjectV2ItemFieldMilestoneValue {
	                milestone { title }
	              }
	            }
	          }
	        }
	        pageInfo {
	          hasNextPage
	          endCursor
	        }
	      }
	    }
	  }
	}`, ownerRoot, cfg.Owner, cfg.ProjectNumber, after)
}
