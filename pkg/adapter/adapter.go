package adapter

import (
	"context"

	"github.com/zen-systems/claimgate/pkg/artifact"
)

// Request is one adjudication request: system instructions plus user
// content. The user content carries the batched line-item context and
// clinical text; the system instructions describe the decision schema.
type Request struct {
	System string
	User   string
}

// Adapter defines the interface for reasoning-backend adapters.
type Adapter interface {
	// Complete sends a request to the model and returns the response
	// as an artifact.
	Complete(ctx context.Context, model string, req Request) (*artifact.Artifact, error)

	// Name returns the adapter's identifier.
	Name() string

	// Models returns the list of supported models.
	Models() []string
}

// BackendInfo holds metadata about a configured backend.
type BackendInfo struct {
	Name   string
	Models []ModelInfo
}

// ModelInfo holds metadata about a model.
type ModelInfo struct {
	ID          string
	Description string
}

// Describe summarizes an adapter for backend listings.
func Describe(a Adapter) BackendInfo {
	ids := a.Models()
	models := make([]ModelInfo, 0, len(ids))
	for _, id := range ids {
		models = append(models, ModelInfo{ID: id})
	}
	return BackendInfo{Name: a.Name(), Models: models}
}
