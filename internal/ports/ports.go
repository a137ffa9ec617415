package ports

import (
	"context"

	"IntentScanner/internal/domain"
	"IntentScanner/internal/tabular"
)

// CompletionRequest is a single chat-completion call.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	// JSONObject asks the provider to constrain output to a JSON object.
	JSONObject bool
}

// Completer sends one prompt to an LLM and returns the first choice's text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Classifier turns a URL into an intent verdict. Implementations never fail.
type Classifier interface {
	Classify(ctx context.Context, url string) domain.Verdict
}

// TableSource loads raw tabular input.
type TableSource interface {
	Load(ctx context.Context, path string) (tabular.Table, error)
}

// DatasetStore persists a full dataset snapshot, overwriting the previous one.
type DatasetStore interface {
	Save(ctx context.Context, ds *domain.Dataset) error
}

// Pacer spaces out outbound requests.
type Pacer interface {
	Wait(ctx context.Context) error
}
