package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Params configures a single completion call. The model and token budget
// differ per tier; sampling parameters are shared configuration.
type Params struct {
	Model            string
	MaxTokens        int
	Temperature      float64
	TopP             float64
	PresencePenalty  float64
	FrequencyPenalty float64
}

// Completion is a finished chat completion.
type Completion struct {
	Content     string
	TotalTokens int
}

// CompletionProvider is the interface the model router calls.
type CompletionProvider interface {
	Complete(ctx context.Context, systemPrompt, question string, p Params) (*Completion, error)
}

// APIError is a non-2xx response from the completion API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("completion API status %d: %s", e.StatusCode, e.Body)
}

// IsTimeout reports whether err is a request timeout, either from the HTTP
// client deadline or a cancelled context.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
