package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultEndpoint = "https://api.github.com/graphql"

// Config holds the connection settings for the GitHub GraphQL API.
type Config struct {
	Endpoint      string
	Token         string
	Owner         string
	OwnerType     string // "organization" or "user"
	ProjectNumber int

	// Performance Settings
	RequestDelay time.Duration
}

// Client is a throttled GraphQL client with a session-scoped page cache.
// It is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client

	throttleMutex sync.Mutex
	lastRequest   time.Time

	cache      map[string][]ProjectItemDTO
	cacheMutex sync.RWMutex
}

// NewClient creates a client for the configured project.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
		cache: make(map[string][]ProjectItemDTO),
	}
}

// FetchProjectItems walks the full item connection page by page and returns
// every item node of the project.
func (c *Client) FetchProjectItems(ctx context.Context) ([]ProjectItemDTO, error) {
	if c.cfg.Token == "" {
		return nil, fmt.Errorf("github: token not configured")
	}

	cacheKey := fmt.Sprintf("items:%s:%d", c.cfg.Owner, c.cfg.ProjectNumber)
	c.cacheMutex.RLock()
	cached, ok := c.cache[cacheKey]
	c.cacheMutex.RUnlock()
	if ok {
		log.Debug().Str("key", cacheKey).Msg("Item cache hit")
		return cached, nil
	}

	var all []ProjectItemDTO
	cursor := ""
	page := 0

	for {
		page++
		c.throttle()

		items, info, err := c.fetchPage(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("github: page %d: %w", page, err)
		}
		all = append(all, items...)

		log.Debug().Int("page", page).Int("items", len(items)).Msg("Fetched project page")

		if !info.HasNextPage {
			break
		}
		cursor = info.EndCursor
	}

	log.Info().Int("items", len(all)).Int("pages", page).Msg("Project fetch complete")

	c.cacheMutex.Lock()
	c.cache[cacheKey] = all
	c.cacheMutex.Unlock()

	return all, nil
}

// throttle enforces the configured minimum delay between API requests. The
// lock is held across the sleep so concurrent fetches queue up instead of
// racing past the delay together.
func (c *Client) throttle() {
	if c.cfg.RequestDelay <= 0 {
		return
	}
	c.throttleMutex.Lock()
	defer c.throttleMutex.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < c.cfg.RequestDelay {
		wait := c.cfg.RequestDelay - elapsed
		log.Debug().Dur("wait", wait).Msg("Throttling GitHub request")
		time.Sleep(wait)
	}
	c.lastRequest = time.Now()
}

type pageInfoDTO struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type itemsConnectionDTO struct {
	Nodes    []ProjectItemDTO `json:"nodes"`
	PageInfo pageInfoDTO      `json:"pageInfo"`
}

type ownerDTO struct {
	ProjectV2 *struct {
		Items itemsConnectionDTO `json:"items"`
	} `json:"projectV2"`
}

type pageEnvelopeDTO struct {
	Organization *ownerDTO `json:"organization"`
	User         *ownerDTO `json:"user"`
}

type graphQLRequest struct {
	Query string `json:"query"`
}

type graphQLResponse struct {
	Data   *pageEnvelopeDTO `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) fetchPage(ctx context.Context, cursor string) ([]ProjectItemDTO, pageInfoDTO, error) {
	body, err := json.Marshal(graphQLRequest{Query: buildItemsQuery(c.cfg, cursor)})
	if err != nil {
		return nil, pageInfoDTO{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, pageInfoDTO{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pageInfoDTO{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, pageInfoDTO{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(b))
	}

	var gqlResp graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return nil, pageInfoDTO{}, fmt.Errorf("decoding response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return nil, pageInfoDTO{}, fmt.Errorf("graphql error: %s", gqlResp.Errors[0].Message)
	}

	conn, ok := extractItems(gqlResp.Data)
	if !ok {
		return nil, pageInfoDTO{}, fmt.Errorf("no project items in response (owner %q, project %d)", c.cfg.Owner, c.cfg.ProjectNumber)
	}
	return conn.Nodes, conn.PageInfo, nil
}

// extractItems supports both owner roots so a snapshot recorded against one
// account type still loads against the other.
func extractItems(env *pageEnvelopeDTO) (itemsConnectionDTO, bool) {
	if env == nil {
		return itemsConnectionDTO{}, false
	}
	for _, owner := range []*ownerDTO{env.Organization, env.User} {
		if owner != nil && owner.ProjectV2 != nil {
			return owner.ProjectV2.Items, true
		}
	}
	return itemsConnectionDTO{}, false
}
