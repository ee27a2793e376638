// Package orchestrator runs the five-stage chat pipeline: echo the request in
// the working language, answer it, refine the answer, localize it, print it.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/valpere/perechat/internal/lang"
	"github.com/valpere/perechat/internal/llm"
	"github.com/valpere/perechat/internal/refiner"
	"github.com/valpere/perechat/internal/translator"
)

type Stage string

const (
	StageTranslate Stage = "translate"
	StageInitial   Stage = "initial"
	StageRefine    Stage = "refine"
	StageLocalize  Stage = "localize"
	StageEmit      Stage = "emit"
)

type OrchestratorConfig struct {
	WorkingLanguage  lang.Language
	UserLanguage     lang.Language
	RefineIterations int
}

// Call is one model invocation made during a run.
type Call struct {
	Seq     int
	Stage   Stage
	Prompt  string
	Output  string
	Latency time.Duration
}

// OrchestratorResult holds every intermediate text of a run. Refinements has
// one entry per refinement pass, in order.
type OrchestratorResult struct {
	Request     string
	Echo        string
	Initial     string
	Refinements []string
	Final       string
	Calls       []Call
	Elapsed     time.Duration
}

// Stopper receives the stop signal once the localized answer is ready.
type Stopper interface {
	Stop()
}

// StageError wraps the error that aborted a run with the stage it came from.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %q: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type Orchestrator struct {
	client     llm.Client
	translator translator.Translator
	config     OrchestratorConfig
	out        io.Writer
	logger     *log.Logger
}

type Option func(*Orchestrator)

// WithTranslator replaces the model-backed translator used by the first and
// fourth stages.
func WithTranslator(t translator.Translator) Option {
	return func(o *Orchestrator) { o.translator = t }
}

func WithOutput(w io.Writer) Option {
	return func(o *Orchestrator) { o.out = w }
}

func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

func New(client llm.Client, config OrchestratorConfig, opts ...Option) *Orchestrator {
	if config.RefineIterations < 1 {
		config.RefineIterations = refiner.DefaultIterations
	}
	o := &Orchestrator{
		client: client,
		config: config,
		out:    os.Stdout,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute runs all five stages in order for request. There is no branching
// and no early exit: an empty request goes through every stage, and the
// first failing call aborts the run. stop, when non-nil, is signalled after
// the localization call returns and before the answer is printed.
//
// Execute is not safe for concurrent use on the same Orchestrator.
func (o *Orchestrator) Execute(ctx context.Context, request string, stop Stopper) (*OrchestratorResult, error) {
	started := time.Now()
	rec := &recorder{next: o.client, logger: o.logger}

	tr := o.translator
	if tr == nil {
		tr = translator.NewLLMTranslator(rec)
	}
	result := &OrchestratorResult{Request: request}

	ref := refiner.NewLoopRefiner(rec, o.config.RefineIterations)
	ref.OnIteration(func(i int, prompt, output string) {
		result.Refinements = append(result.Refinements, output)
		o.logger.Debug("refinement pass", "pass", i, "of", o.config.RefineIterations)
	})

	// 1. Echo the request in the working language. Shown only; later stages
	// work from the raw request.
	rec.enter(StageTranslate)
	echo, err := tr.Translate(ctx, request, o.config.WorkingLanguage)
	if err != nil {
		return nil, &StageError{Stage: StageTranslate, Err: err}
	}
	result.Echo = echo
	fmt.Fprintf(o.out, "\nHmm.. The user said, \"%s\"\n", echo)

	// 2. Answer the untranslated request.
	rec.enter(StageInitial)
	response, err := rec.Invoke(ctx, request)
	if err != nil {
		return nil, &StageError{Stage: StageInitial, Err: err}
	}
	result.Initial = response

	// 3. Fixed number of refinement passes.
	rec.enter(StageRefine)
	response, err = ref.Refine(ctx, request, response)
	if err != nil {
		return nil, &StageError{Stage: StageRefine, Err: err}
	}

	// 4. Localize into the user's language.
	rec.enter(StageLocalize)
	fmt.Fprintf(o.out, "\nRespond in the user's native language. '%s'\n", o.config.UserLanguage.Name)
	response, err = tr.Translate(ctx, response, o.config.UserLanguage)
	if err != nil {
		return nil, &StageError{Stage: StageLocalize, Err: err}
	}
	if stop != nil {
		stop.Stop()
	}

	// 5. Emit.
	rec.enter(StageEmit)
	fmt.Fprintf(o.out, "\nAI: %s\n", response)

	result.Final = response
	result.Calls = rec.calls
	result.Elapsed = time.Since(started)

	o.logger.Debug("pipeline complete", "calls", len(rec.calls), "elapsed", result.Elapsed)
	return result, nil
}
