// Package embed abstracts the embedding collaborator: text in, fixed
// dimensionality vectors out.
package embed

import "context"

// Provider defines the interface for embedding text into vectors.
// Implementations may use remote APIs or deterministic test doubles.
type Provider interface {
	// Embed converts a slice of text strings into their vector
	// representations, one vector per input, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of the vectors produced by
	// this provider. Fixed per configured model.
	Dimensions() int

	// Close releases any resources held by the provider.
	Close() error
}
