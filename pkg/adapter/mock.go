package adapter

import (
	"context"
	"sync"

	"github.com/zen-systems/claimgate/pkg/artifact"
)

// MockAdapter returns scripted responses for local runs and tests.
type MockAdapter struct {
	mu              sync.Mutex
	responses       []string
	errs            []error
	defaultResponse string
	calls           []Request
}

// NewMockAdapter creates a mock adapter with a default response.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{defaultResponse: "{}"}
}

// NewMockAdapterWithResponses creates a mock adapter that replays the
// given responses in order, then falls back to the default.
func NewMockAdapterWithResponses(responses []string, defaultResponse string) *MockAdapter {
	if defaultResponse == "" {
		defaultResponse = "{}"
	}
	return &MockAdapter{responses: responses, defaultResponse: defaultResponse}
}

// Fail queues errors to be returned before any scripted response.
func (a *MockAdapter) Fail(errs ...error) *MockAdapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errs = append(a.errs, errs...)
	return a
}

// Calls returns the requests the adapter has received.
func (a *MockAdapter) Calls() []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Request, len(a.calls))
	copy(out, a.calls)
	return out
}

// Name returns the adapter identifier.
func (a *MockAdapter) Name() string {
	return "mock"
}

// Models returns the list of supported mock models.
func (a *MockAdapter) Models() []string {
	return []string{"mock-1"}
}

// Complete replays queued errors first, then scripted responses.
func (a *MockAdapter) Complete(_ context.Context, model string, req Request) (*artifact.Artifact, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if model == "" {
		model = "mock-1"
	}
	a.calls = append(a.calls, req)

	if len(a.errs) > 0 {
		err := a.errs[0]
		a.errs = a.errs[1:]
		return nil, err
	}

	content := a.defaultResponse
	if len(a.responses) > 0 {
		content = a.responses[0]
		a.responses = a.responses[1:]
	}
	return artifact.New(content, a.Name(), model), nil
}
