package refiner

import (
	"context"
	"fmt"

	"github.com/valpere/perechat/internal/llm"
)

// LoopRefiner runs a fixed number of refinement passes. Every pass replaces
// the response with whatever the model returned; there is no convergence
// check and no early stop, even when a pass changes nothing.
type LoopRefiner struct {
	client      llm.Client
	iterations  int
	onIteration func(i int, prompt, output string)
}

// NewLoopRefiner creates a refiner making exactly iterations model calls per
// Refine. Values below 1 select DefaultIterations.
func NewLoopRefiner(client llm.Client, iterations int) *LoopRefiner {
	if iterations < 1 {
		iterations = DefaultIterations
	}
	return &LoopRefiner{client: client, iterations: iterations}
}

func (r *LoopRefiner) Iterations() int {
	return r.iterations
}

// OnIteration registers fn to be called after every successful pass with the
// 1-based pass number, the prompt sent and the model's output.
func (r *LoopRefiner) OnIteration(fn func(i int, prompt, output string)) {
	r.onIteration = fn
}

func (r *LoopRefiner) Refine(ctx context.Context, request, response string) (string, error) {
	for i := 0; i < r.iterations; i++ {
		prompt := BuildPrompt(request, response)
		refined, err := r.client.Invoke(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("refinement pass %d/%d: %w", i+1, r.iterations, err)
		}
		if r.onIteration != nil {
			r.onIteration(i+1, prompt, refined)
		}
		response = refined
	}
	return response, nil
}

// BuildPrompt embeds the literal request and the current response and asks
// for a refined plain-text answer with no questions and no commentary.
func BuildPrompt(request, response string) string {
	return fmt.Sprintf("request:\n```\n%s\n```\nresponse:\n```\n%s\n```\n"+
		"Refine the response to perfectly match the request.\n"+
		"Output only the plaintext response.\n"+
		"Ask nothing; independently make all choices and output only the final result.\n"+
		"Do not explain any refinements.",
		request, response)
}
