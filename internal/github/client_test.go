package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func testConfig(endpoint string) Config {
	return Config{
		Endpoint:      endpoint,
		Token:         "test-token",
		Owner:         "acme",
		OwnerType:     "organization",
		ProjectNumber: 7,
	}
}

func pageResponse(root string, ids []string, hasNext bool, cursor string) string {
	nodes := make([]string, len(ids))
	for i, id := range ids {
		nodes[i] = fmt.Sprintf(`{"content": {"id": %q, "createdAt": "2024-01-01T00:00:00Z"}}`, id)
	}
	return fmt.Sprintf(`{"data": {%q: {"projectV2": {"items": {
		"nodes": [%s],
		"pageInfo": {"hasNextPage": %v, "endCursor": %q}
	}}}}}`, root, strings.Join(nodes, ","), hasNext, cursor)
}

func TestFetchProjectItems_Paginates(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			fmt.Fprint(w, pageResponse("organization", []string{"a", "b"}, true, "CURSOR-1"))
			return
		}
		fmt.Fprint(w, pageResponse("organization", []string{"c"}, false, ""))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	items, err := client.FetchProjectItems(context.Background())
	if err != nil {
		t.Fatalf("FetchProjectItems: %v", err)
	}

	if calls != 2 {
		t.Errorf("made %d requests, want 2", calls)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[2].Content == nil || items[2].Content.ID != "c" {
		t.Errorf("unexpected last item: %+v", items[2])
	}

	// A second call within the same session is served from the page cache.
	if _, err := client.FetchProjectItems(context.Background()); err != nil {
		t.Fatalf("cached fetch: %v", err)
	}
	if calls != 2 {
		t.Errorf("cache miss: made %d requests, want 2", calls)
	}
}

func TestFetchProjectItems_UserRoot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageResponse("user", []string{"u1"}, false, ""))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.OwnerType = "user"

	items, err := NewClient(cfg).FetchProjectItems(context.Background())
	if err != nil {
		t.Fatalf("FetchProjectItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
}

func TestFetchProjectItems_GraphQLError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors": [{"message": "Could not resolve to a ProjectV2"}]}`)
	}))
	defer server.Close()

	_, err := NewClient(testConfig(server.URL)).FetchProjectItems(context.Background())
	if err == nil || !strings.Contains(err.Error(), "Could not resolve") {
		t.Errorf("err = %v, want the GraphQL error surfaced", err)
	}
}

func TestFetchProjectItems_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := NewClient(testConfig(server.URL)).FetchProjectItems(context.Background())
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("err = %v, want a status error", err)
	}
}

func TestFetchProjectItems_ConcurrentFetchesAreThrottled(t *testing.T) {
	var mu sync.Mutex
	var arrivals []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		mu.Unlock()
		fmt.Fprint(w, pageResponse("organization", []string{"a"}, false, ""))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RequestDelay = 30 * time.Millisecond
	client := NewClient(cfg)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := client.FetchProjectItems(context.Background())
			if err != nil {
				t.Errorf("FetchProjectItems: %v", err)
			} else if len(items) != 1 {
				t.Errorf("got %d items, want 1", len(items))
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	// Both goroutines may miss the cache and fetch; the throttle must still
	// space their requests out instead of letting them race through together.
	for i := 1; i < len(arrivals); i++ {
		if gap := arrivals[i].Sub(arrivals[i-1]); gap < cfg.RequestDelay/2 {
			t.Errorf("requests %d and %d only %v apart, want at least %v", i-1, i, gap, cfg.RequestDelay/2)
		}
	}
}

func TestFetchProjectItems_MissingToken(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.Token = ""
	if _, err := NewClient(cfg).FetchProjectItems(context.Background()); err == nil {
		t.Error("expected an error without a token")
	}
}

func TestBuildItemsQuery(t *testing.T) {
	cfg := testConfig("")

	query := buildItemsQuery(cfg, "")
	for _, want := range []string{`organization(login: "acme")`, "projectV2(number: 7)", "first: 100"} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q", want)
		}
	}
	if !strings.Contains(query, "after: null") {
		t.Error("first page should carry a null cursor")
	}

	paged := buildItemsQuery(cfg, "CURSOR-1")
	if !strings.Contains(paged, `after: "CURSOR-1"`) {
		t.Error("follow-up page missing the cursor")
	}

	cfg.OwnerType = "user"
	if q := buildItemsQuery(cfg, ""); !strings.Contains(q, `user(login: "acme")`) {
		t.Error("user owner type should query the user root")
	}
}
