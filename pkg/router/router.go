// Package router implements two-tier model dispatch: knowledge-base
// shortcut, complexity-based routing to the deep model, and quality-gated
// escalation from the fast model.
package router

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/daus212/it-helper-bot/pkg/classifier"
	"github.com/daus212/it-helper-bot/pkg/knowledge"
	"github.com/daus212/it-helper-bot/pkg/providers"
)

// PlaceholderAPIKey is the unset marker shipped in the sample .env; it
// counts as no key at all.
const PlaceholderAPIKey = "your_openrouter_api_key_here"

// minAnswerLen is the quality-gate length floor for fast-model answers.
const minAnswerLen = 20

// DefaultUnhelpfulMarkers flag fast-model answers that punted.
var DefaultUnhelpfulMarkers = []string{
	"maaf saya tidak tahu",
	"tidak bisa membantu",
	"di luar kemampuan saya",
	"coba hubungi teknisi",
	"saya tidak yakin",
	"kurang informasi",
}

// Replies are the terminal user-visible strings returned in place of an
// answer when a model call fails. The router never raises past this
// boundary.
type Replies struct {
	ConfigError string
	Busy        string
	ServerError string
	Timeout     string
	Generic     string
}

// TelemetryFunc observes each model call for logging; it receives the model
// name, the (truncated) query and response, and the token usage.
type TelemetryFunc func(model, query, response string, totalTokens int)

// Config wires a Router.
type Config struct {
	Knowledge  *knowledge.Store
	Classifier *classifier.Classifier
	Provider   providers.CompletionProvider

	APIKey       string
	SystemPrompt string
	FastParams   providers.Params
	DeepParams   providers.Params

	UnhelpfulMarkers []string
	Replies          Replies
	Telemetry        TelemetryFunc
}

// Router answers questions.
type Router struct {
	cfg     Config
	markers []string
}

// New creates a Router. Markers default to DefaultUnhelpfulMarkers and the
// telemetry callback to a log.Printf line.
func New(cfg Config) *Router {
	markers := cfg.UnhelpfulMarkers
	if len(markers) == 0 {
		markers = DefaultUnhelpfulMarkers
	}
	if cfg.Telemetry == nil {
		cfg.Telemetry = func(model, query, response string, totalTokens int) {
			log.Printf("model=%s query=%q response=%q tokens=%d",
				model, truncate(query, 50), truncate(response, 80), totalTokens)
		}
	}
	return &Router{cfg: cfg, markers: markers}
}

// Answer resolves a question to a reply string. The result is always
// user-sendable: either an answer or one of the terminal error replies.
//
// Resolution order: knowledge base, then the deep model directly for
// complex-troubleshooting questions, otherwise the fast model with a
// quality gate and escalation to the deep model on failure or a gated
// response.
func (r *Router) Answer(ctx context.Context, question string) string {
	if answer, ok := r.cfg.Knowledge.Lookup(question); ok {
		log.Printf("knowledge base hit for %q", truncate(question, 50))
		return answer
	}

	if r.cfg.APIKey == "" || r.cfg.APIKey == PlaceholderAPIKey {
		log.Printf("completion API key not configured")
		return r.cfg.Replies.ConfigError
	}

	if r.cfg.Classifier.IsComplex(question) {
		log.Printf("complex troubleshooting question, routing straight to %s", r.cfg.DeepParams.Model)
		answer, err := r.call(ctx, question, r.cfg.DeepParams)
		if err != nil {
			return r.errorReply(err)
		}
		return answer
	}

	answer, err := r.call(ctx, question, r.cfg.FastParams)
	if err == nil && r.isGoodResponse(answer) {
		return answer
	}
	if err != nil {
		log.Printf("fast model %s failed, escalating: %v", r.cfg.FastParams.Model, err)
	} else {
		log.Printf("fast model %s response failed quality gate, escalating", r.cfg.FastParams.Model)
	}

	answer, err = r.call(ctx, question, r.cfg.DeepParams)
	if err != nil {
		return r.errorReply(err)
	}
	return answer
}

func (r *Router) call(ctx context.Context, question string, p providers.Params) (string, error) {
	comp, err := r.cfg.Provider.Complete(ctx, r.cfg.SystemPrompt, question, p)
	if err != nil {
		return "", err
	}
	r.cfg.Telemetry(p.Model, question, comp.Content, comp.TotalTokens)
	return comp.Content, nil
}

// isGoodResponse is the quality gate: reject empty or short answers and
// answers containing an unhelpful-phrase marker.
func (r *Router) isGoodResponse(response string) bool {
	if utf8.RuneCountInString(response) < minAnswerLen {
		return false
	}
	lower := strings.ToLower(response)
	for _, marker := range r.markers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// errorReply maps a model-call failure to its terminal user message.
func (r *Router) errorReply(err error) string {
	var apiErr *providers.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized:
			log.Printf("completion API rejected the key: %v", err)
			return r.cfg.Replies.ConfigError
		case apiErr.StatusCode == http.StatusTooManyRequests:
			log.Printf("completion API rate limit hit: %v", err)
			return r.cfg.Replies.Busy
		case apiErr.StatusCode >= 500:
			log.Printf("completion API server error: %v", err)
			return r.cfg.Replies.ServerError
		}
	}
	if providers.IsTimeout(err) {
		log.Printf("completion request timed out: %v", err)
		return r.cfg.Replies.Timeout
	}
	log.Printf("completion request failed: %v", err)
	return r.cfg.Replies.Generic
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
