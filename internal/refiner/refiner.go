// Package refiner implements the self-refinement stage of the chat pipeline:
// the model is repeatedly shown the original request next to its current
// answer and asked for a better answer.
package refiner

import "context"

// DefaultIterations is how many refinement passes run when none is configured.
const DefaultIterations = 5

// Refiner improves response so that it better matches request.
type Refiner interface {
	Refine(ctx context.Context, request, response string) (string, error)
}
