package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	perr "leadscout/internal/platform/errors"
	"leadscout/internal/platform/testkit"
)

// newTestClient points a client at srv with fast retries and a no-op sleep
func newTestClient(t *testing.T, srv *httptest.Server, maxRetries int) (*Client, *[]time.Duration) {
	t.Helper()
	c := NewClient(Options{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		MaxRetries: maxRetries,
		RetryBase:  time.Millisecond,
	})
	var slept []time.Duration
	c.sleep = func(d time.Duration) { slept = append(slept, d) }
	return c, &slept
}

func pageJSON(t *testing.T, resp SearchResponse) []byte {
	t.Helper()
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal page: %v", err)
	}
	return b
}

func TestTextSearch_AuthFailureIsSingleAttempt(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv, 5)
	_, err := c.TextSearch(context.Background(), TextSearchRequest{Query: "restaurante lisboa"})

	testkit.MustCode(t, err, perr.CodeAuth)
	if got := hits.Load(); got != 1 {
		t.Fatalf("auth failure must not retry, got %d attempts", got)
	}
}

func TestTextSearch_BadRequestIsSyntaxNoRetry(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv, 5)
	_, err := c.TextSearch(context.Background(), TextSearchRequest{Query: ""})

	testkit.MustCode(t, err, perr.CodeSyntax)
	if got := hits.Load(); got != 1 {
		t.Fatalf("syntax failure must not retry, got %d attempts", got)
	}
}

func TestTextSearch_RateLimitRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write(pageJSON(t, SearchResponse{Places: []Place{{ID: "p1"}}}))
	}))
	defer srv.Close()

	c, slept := newTestClient(t, srv, 5)
	resp, err := c.TextSearch(context.Background(), TextSearchRequest{Query: "cafe"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Places) != 1 || resp.Places[0].ID != "p1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits.Load())
	}
	if len(*slept) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", len(*slept))
	}
	// exponential: second wait strictly longer than the first
	if (*slept)[1] <= (*slept)[0] {
		t.Fatalf("backoff should grow: %v", *slept)
	}
}

func TestTextSearch_ServerErrorsExhaustRetryCeiling(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	const maxRetries = 3
	c, _ := newTestClient(t, srv, maxRetries)
	_, err := c.TextSearch(context.Background(), TextSearchRequest{Query: "cafe"})

	testkit.MustCode(t, err, perr.CodeTransport)
	if got := hits.Load(); got != maxRetries+1 {
		t.Fatalf("expected %d attempts, got %d", maxRetries+1, got)
	}
}

func TestTextSearch_SendsKeyAndFieldMask(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Goog-Api-Key"); got != "test-key" {
			t.Errorf("api key header = %q", got)
		}
		if got := r.Header.Get("X-Goog-FieldMask"); got != fieldMask {
			t.Errorf("field mask header = %q", got)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("payload decode: %v", err)
		}
		if payload["textQuery"] != "padaria porto" {
			t.Errorf("textQuery = %v", payload["textQuery"])
		}
		_, _ = w.Write(pageJSON(t, SearchResponse{}))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv, 1)
	if _, err := c.TextSearch(context.Background(), TextSearchRequest{Query: "padaria porto"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearchPages_FollowsTokensAndStopsAtMax(t *testing.T) {
	t.Parallel()

	pages := map[string]SearchResponse{
		"": {
			Places:        []Place{{ID: "a"}, {ID: "b"}},
			NextPageToken: "tok-2",
		},
		"tok-2": {
			Places:        []Place{{ID: "c"}, {ID: "d"}},
			NextPageToken: "tok-3",
		},
		"tok-3": {
			Places: []Place{{ID: "e"}},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			PageToken string `json:"pageToken"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		resp, ok := pages[payload.PageToken]
		if !ok {
			t.Errorf("unexpected page token %q", payload.PageToken)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write(pageJSON(t, resp))
	}))
	defer srv.Close()

	c, slept := newTestClient(t, srv, 1)

	var ids []string
	for p, err := range c.SearchPages(context.Background(), TextSearchRequest{Query: "q"}, 3) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids = append(ids, p.ID)
	}

	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Fatalf("unexpected ids: %v", ids)
	}
	// one inter-page delay for the single continuation fetched
	if len(*slept) != 1 {
		t.Fatalf("expected 1 inter-page sleep, got %d", len(*slept))
	}
}

func TestSearchPages_TerminalErrorEndsSequence(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv, 1)

	var yields int
	var lastErr error
	for _, err := range c.SearchPages(context.Background(), TextSearchRequest{Query: "q"}, 10) {
		yields++
		lastErr = err
	}

	if yields != 1 {
		t.Fatalf("expected a single error yield, got %d", yields)
	}
	testkit.MustCode(t, lastErr, perr.CodeAuth)
}

func TestValidateKey(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"places":[]}`))
		}))
		defer srv.Close()

		c, _ := newTestClient(t, srv, 1)
		if !c.ValidateKey(context.Background()) {
			t.Fatalf("expected key to validate")
		}
	})

	t.Run("rejected", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		c, _ := newTestClient(t, srv, 1)
		if c.ValidateKey(context.Background()) {
			t.Fatalf("expected key to be rejected")
		}
	})
}

func TestPlace_PriceLevelInt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		level string
		want  *int
	}{
		{"PRICE_LEVEL_FREE", intp(0)},
		{"PRICE_LEVEL_MODERATE", intp(2)},
		{"PRICE_LEVEL_VERY_EXPENSIVE", intp(4)},
		{"", nil},
		{"PRICE_LEVEL_UNSPECIFIED", nil},
	}
	for _, tc := range cases {
		got := Place{PriceLevel: tc.level}.PriceLevelInt()
		switch {
		case tc.want == nil && got != nil:
			t.Fatalf("level %q: got %d, want nil", tc.level, *got)
		case tc.want != nil && (got == nil || *got != *tc.want):
			t.Fatalf("level %q: got %v, want %d", tc.level, got, *tc.want)
		}
	}
}

func intp(n int) *int { return &n }
