package commitplan

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// ShipOutcome is the result of a commit-then-push run.
type ShipOutcome struct {
	Committed bool
	Pushed    bool
	// Compensated is true when the commit was undone after a failed push.
	Compensated bool
	CommitErr   error
	PushErr     error
	// UndoErr is set when the compensating undo itself failed.
	UndoErr error
}

// Err returns the primary failure of the run, if any.
func (o ShipOutcome) Err() error {
	switch {
	case o.CommitErr != nil:
		return fmt.Errorf("commit failed: %w", o.CommitErr)
	case o.PushErr != nil && o.UndoErr != nil:
		return fmt.Errorf("push failed: %w (undoing the commit also failed: %v)", o.PushErr, o.UndoErr)
	case o.PushErr != nil:
		return fmt.Errorf("push failed: %w", o.PushErr)
	}
	return nil
}

// Shipper commits a plan as one commit and pushes it. A failed push is
// compensated by undoing the commit while keeping its changes staged.
type Shipper struct {
	gw     Gateway
	logger zerolog.Logger
	push   func(ctx context.Context) error
}

// ShipperOption configures a Shipper.
type ShipperOption func(*Shipper)

// WithShipLogger sets the logger for commit, push and compensation steps.
func WithShipLogger(logger zerolog.Logger) ShipperOption {
	return func(s *Shipper) {
		s.logger = logger
	}
}

// WithPushFunc replaces the gateway push, e.g. to set an upstream first.
func WithPushFunc(push func(ctx context.Context) error) ShipperOption {
	return func(s *Shipper) {
		s.push = push
	}
}

// NewShipper returns a Shipper bound to gw. Without WithPushFunc it pushes
// through gw.Push.
func NewShipper(gw Gateway, opts ...ShipperOption) *Shipper {
	s := &Shipper{
		gw:     gw,
		logger: zerolog.Nop(),
		push:   gw.Push,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ship collapses plan into a single commit over everything staged, then
// pushes. It offers no atomicity beyond the one compensating undo.
func (s *Shipper) Ship(ctx context.Context, plan Plan) ShipOutcome {
	var out ShipOutcome
	if len(plan) == 0 {
		out.CommitErr = ErrEmptyPlan
		return out
	}

	if err := s.gw.Commit(ctx, plan.MergedMessage()); err != nil {
		out.CommitErr = err
		return out
	}
	out.Committed = true

	if err := s.push(ctx); err != nil {
		out.PushErr = err
		s.logger.Debug().Err(err).Msg("push failed, undoing last commit")
		if undoErr := s.gw.UndoLastCommitKeepStaged(ctx); undoErr != nil {
			out.UndoErr = undoErr
			s.logger.Warn().Err(undoErr).Msg("undo of last commit failed")
			return out
		}
		out.Compensated = true
		return out
	}

	out.Pushed = true
	return out
}

// IsPushFailure reports whether err came from the push step of Ship.
func (o ShipOutcome) IsPushFailure() bool {
	return o.CommitErr == nil && o.PushErr != nil
}
