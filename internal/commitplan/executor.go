package commitplan

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/samzong/gsc/internal/stringsutil"
)

// GroupError records which group stopped a separate-commit run and why.
type GroupError struct {
	Index int // zero-based position in the plan
	Scope string
	Step  string // "unstage", "stage" or "commit"
	Err   error
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("group %d (%s) failed to %s: %v", e.Index+1, e.Scope, e.Step, e.Err)
}

func (e *GroupError) Unwrap() error {
	return e.Err
}

// Outcome is the result of executing a plan.
type Outcome struct {
	Committed int
	Total     int
	// Failure is set when the run stopped early.
	Failure *GroupError
	// Restaged lists the files handed to the best-effort re-stage step.
	Restaged []string
	// RestageErr is the discarded error of the re-stage step, kept for reporting only.
	RestageErr error
}

// Succeeded reports whether at least one commit landed.
func (o Outcome) Succeeded() bool {
	return o.Committed > 0
}

// Err returns the underlying failure, or nil when every entry committed.
func (o Outcome) Err() error {
	if o.Failure == nil {
		return nil
	}
	return o.Failure
}

// Executor carries out a plan against an explicit Gateway handle.
type Executor struct {
	gw          Gateway
	logger      zerolog.Logger
	dryRun      bool
	onCommitted func(i int, e Entry)
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithLogger sets the logger used for per-group progress and re-stage
// failures. The default discards everything.
func WithLogger(logger zerolog.Logger) ExecutorOption {
	return func(x *Executor) {
		x.logger = logger
	}
}

// WithDryRun makes the executor log each step instead of performing it.
func WithDryRun(dryRun bool) ExecutorOption {
	return func(x *Executor) {
		x.dryRun = dryRun
	}
}

// WithProgress registers a callback run after each entry commits.
func WithProgress(fn func(i int, e Entry)) ExecutorOption {
	return func(x *Executor) {
		x.onCommitted = fn
	}
}

// NewExecutor returns an Executor bound to gw.
func NewExecutor(gw Gateway, opts ...ExecutorOption) *Executor {
	x := &Executor{
		gw:     gw,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// ExecuteMerged commits everything currently staged once, under all
// messages joined by blank lines.
func (x *Executor) ExecuteMerged(ctx context.Context, plan Plan) Outcome {
	out := Outcome{Total: 1}
	if len(plan) == 0 {
		out.Failure = &GroupError{Step: "commit", Err: ErrEmptyPlan}
		return out
	}

	if x.dryRun {
		x.logger.Info().Int("groups", len(plan)).Msg("dry run: would commit merged message")
		return out
	}

	if err := x.gw.Commit(ctx, plan.MergedMessage()); err != nil {
		out.Failure = &GroupError{Scope: mergedScope(plan), Step: "commit", Err: err}
		return out
	}
	out.Committed = 1
	if x.onCommitted != nil {
		x.onCommitted(0, Entry{Group: plan[0].Group, Message: plan.MergedMessage()})
	}
	return out
}

// ExecuteSeparately commits each entry on its own, in order. The first
// failure stops the loop; files of the failing entry and every later entry
// are put back on the stage on a best-effort basis.
func (x *Executor) ExecuteSeparately(ctx context.Context, plan Plan) Outcome {
	out := Outcome{Total: len(plan)}

	for i, entry := range plan {
		if x.dryRun {
			x.logger.Info().
				Str("scope", entry.Group.Scope).
				Strs("files", entry.Group.Files).
				Msg("dry run: would commit group")
			continue
		}

		step, err := x.commitEntry(ctx, entry)
		if err != nil {
			out.Failure = &GroupError{Index: i, Scope: entry.Group.Scope, Step: step, Err: err}
			out.Restaged, out.RestageErr = x.restageRemaining(ctx, plan[i:])
			return out
		}

		out.Committed++
		x.logger.Debug().
			Int("index", i+1).
			Int("total", len(plan)).
			Str("scope", entry.Group.Scope).
			Int("files", len(entry.Group.Files)).
			Msg("committed group")
		if x.onCommitted != nil {
			x.onCommitted(i, entry)
		}
	}

	return out
}

func (x *Executor) commitEntry(ctx context.Context, entry Entry) (string, error) {
	staged, err := x.gw.StagedFiles(ctx)
	if err != nil {
		return "unstage", err
	}
	if len(staged) > 0 {
		if err := x.gw.Unstage(ctx, staged); err != nil {
			return "unstage", err
		}
	}

	if err := x.gw.Stage(ctx, entry.Group.Files); err != nil {
		return "stage", err
	}

	if err := x.gw.Commit(ctx, entry.Message); err != nil {
		return "commit", err
	}
	return "", nil
}

// restageRemaining is the best-effort step of a failed run. Its error is
// logged and returned for reporting, never as the primary failure.
func (x *Executor) restageRemaining(ctx context.Context, remaining Plan) ([]string, error) {
	files := stringsutil.UniqueStrings(remaining.Files())
	if len(files) == 0 {
		return nil, nil
	}

	if err := x.gw.Stage(ctx, files); err != nil {
		x.logger.Warn().Err(err).Strs("files", files).Msg("best-effort re-stage failed")
		return files, err
	}
	x.logger.Debug().Int("files", len(files)).Msg("re-staged remaining files")
	return files, nil
}

func mergedScope(plan Plan) string {
	scopes := make([]string, 0, len(plan))
	for _, e := range plan {
		scopes = append(scopes, e.Group.Scope)
	}
	return strings.Join(scopes, ",")
}
