package orchestrator

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/valpere/perechat/internal/llm"
)

// recorder sits between the stages and the model client and keeps a log of
// every call, tagged with the stage that made it.
type recorder struct {
	next   llm.Client
	logger *log.Logger
	stage  Stage
	calls  []Call
}

func (r *recorder) enter(stage Stage) {
	r.stage = stage
	r.logger.Debug("entering stage", "stage", stage)
}

func (r *recorder) Name() string {
	return r.next.Name()
}

func (r *recorder) Invoke(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := r.next.Invoke(ctx, prompt)
	latency := time.Since(start)

	if err != nil {
		r.logger.Debug("model call failed", "stage", r.stage, "seq", len(r.calls)+1, "latency", latency, "err", err)
		return "", err
	}

	r.calls = append(r.calls, Call{
		Seq:     len(r.calls) + 1,
		Stage:   r.stage,
		Prompt:  prompt,
		Output:  out,
		Latency: latency,
	})
	r.logger.Debug("model call", "stage", r.stage, "seq", len(r.calls), "latency", latency)
	return out, nil
}
