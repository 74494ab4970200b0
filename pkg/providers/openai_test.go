package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCompleteSendsExpectedRequest(t *testing.T) {
	var gotBody map[string]interface{}
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatal(err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  Restart router Anda.  "}}],"usage":{"total_tokens":42}}`))
	}))
	defer srv.Close()

	c := NewClient("sk-test", srv.URL, time.Second)
	p := Params{
		Model:            "mistralai/mistral-7b-instruct",
		MaxTokens:        400,
		Temperature:      0.7,
		TopP:             0.9,
		PresencePenalty:  0.3,
		FrequencyPenalty: 0.2,
	}

	comp, err := c.Complete(context.Background(), "Kamu asisten IT.", "wifi putus?", p)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if comp.Content != "Restart router Anda." {
		t.Errorf("content = %q (should be trimmed)", comp.Content)
	}
	if comp.TotalTokens != 42 {
		t.Errorf("tokens = %d", comp.TotalTokens)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotBody["model"] != "mistralai/mistral-7b-instruct" {
		t.Errorf("model = %v", gotBody["model"])
	}
	if gotBody["max_tokens"].(float64) != 400 {
		t.Errorf("max_tokens = %v", gotBody["max_tokens"])
	}

	msgs := gotBody["messages"].([]interface{})
	if len(msgs) != 2 {
		t.Fatalf("messages = %v", msgs)
	}
	first := msgs[0].(map[string]interface{})
	if first["role"] != "system" || first["content"] != "Kamu asisten IT." {
		t.Errorf("system message = %v", first)
	}
}

func TestCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	c := NewClient("sk-bad", srv.URL, time.Second)
	_, err := c.Complete(context.Background(), "", "q", Params{Model: "m"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[],"usage":{"total_tokens":0}}`))
	}))
	defer srv.Close()

	c := NewClient("sk", srv.URL, time.Second)
	if _, err := c.Complete(context.Background(), "", "q", Params{Model: "m"}); err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestIsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient("sk", srv.URL, 20*time.Millisecond)
	_, err := c.Complete(context.Background(), "", "q", Params{Model: "m"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !IsTimeout(err) {
		t.Errorf("IsTimeout(%v) = false", err)
	}

	if IsTimeout(errors.New("other")) {
		t.Error("IsTimeout should be false for unrelated errors")
	}
}
