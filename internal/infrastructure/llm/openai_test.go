package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NewsScope/internal/domain"
)

func completionServer(t *testing.T, reply string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Config{APIKey: "k", BaseURL: srv.URL + "/", Timeout: 2 * time.Second}, domain.Topics)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	c := newTestClient(completionServer(t, "  The rover landed.  ", http.StatusOK))
	got, err := c.Summarize(context.Background(), "long article")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "The rover landed." {
		t.Fatalf("Summarize = %q", got)
	}
}

func TestClassifyParsesJSON(t *testing.T) {
	t.Parallel()

	c := newTestClient(completionServer(t, "```json\n{\"label\": \"Science\", \"confidence\": 0.82}\n```", http.StatusOK))
	got, ok, err := c.Classify(context.Background(), "Rover lands on Mars")
	if err != nil || !ok {
		t.Fatalf("Classify: ok=%v err=%v", ok, err)
	}
	if got.Label != "science" || got.Confidence != 0.82 {
		t.Fatalf("Classify = %+v", got)
	}
}

func TestClassifyBareLabel(t *testing.T) {
	t.Parallel()

	c := newTestClient(completionServer(t, "sports.", http.StatusOK))
	got, ok, err := c.Classify(context.Background(), "Final ends in draw")
	if err != nil || !ok || got.Label != "sports" {
		t.Fatalf("Classify = %+v ok=%v err=%v", got, ok, err)
	}
}

func TestClassifyUnknownLabelIsAbsent(t *testing.T) {
	t.Parallel()

	c := newTestClient(completionServer(t, `{"label":"cooking","confidence":0.9}`, http.StatusOK))
	_, ok, err := c.Classify(context.Background(), "Best pasta recipes")
	if err != nil || ok {
		t.Fatalf("expected absent category, ok=%v err=%v", ok, err)
	}
}

func TestCompletionErrorPropagates(t *testing.T) {
	t.Parallel()

	c := newTestClient(completionServer(t, "", http.StatusUnauthorized))
	if _, err := c.Summarize(context.Background(), "text"); err == nil {
		t.Fatal("expected error")
	}
}
