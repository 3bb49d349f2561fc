package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/apiwrapper/auth"
	"github.com/roach88/apiwrapper/client"
	"github.com/roach88/apiwrapper/dump"
	"github.com/roach88/apiwrapper/mock"
)

// Account is the account replayed calls are made with.
const Account = "harness"

// Harness replays one scenario.
type Harness struct {
	adapter *mock.Adapter
	client  *client.Client
	logger  *slog.Logger
}

// Option configures Run.
type Option func(*Harness)

// WithLogger sets the logger for the adapter and client.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// Run executes a scenario and returns the result.
//
// Each run gets a fresh mock adapter, so scenarios are isolated.
// An error is returned when a dump cannot be registered; failed
// expectations are reported in the Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(h)
	}
	h.adapter = mock.New(mock.WithLogger(h.logger))
	h.client = client.New(h.adapter, auth.NewAnonymous(Account), client.WithLogger(h.logger))

	for _, ref := range scenario.Dumps {
		if err := h.adapter.RegisterDumpFile(ref.File, ref.MatchParams); err != nil {
			return nil, fmt.Errorf("failed to register dump: %w", err)
		}
	}

	ctx := context.Background()
	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(ctx, i+1, step, result)
	}
	result.Used = h.adapter.UsedReturns()

	if scenario.ExpectUsed != nil && len(result.Used) != *scenario.ExpectUsed {
		result.AddError(fmt.Sprintf("expected %d used returns, got %d", *scenario.ExpectUsed, len(result.Used)))
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeStep makes one call, logs it and checks its expectation.
func (h *Harness) executeStep(ctx context.Context, n int, step Step, result *Result) {
	params := step.Params
	if params == nil {
		params = []any{}
	}
	entry := LogEntry{Step: n, Call: step.Call(), Params: params}

	usedBefore := len(h.adapter.UsedReturns())
	var (
		ret any
		err error
	)
	if step.Action != "" {
		ret, err = h.client.CallAction(ctx, step.Action, params)
	} else {
		ret, err = h.client.CallFunction(ctx, step.Module, step.Function, params, nil)
	}
	if used := h.adapter.UsedReturns(); len(used) > usedBefore {
		entry.MatchKey = used[len(used)-1]
	}

	if err != nil {
		entry.Error = err.Error()
	} else {
		entry.Return = ret
	}
	result.AddLog(entry)

	h.logger.Debug("replayed step",
		"step", n,
		"call", entry.Call,
		"match_key", entry.MatchKey,
		"error", entry.Error,
	)

	if msg := checkExpect(n, step, ret, err); msg != "" {
		result.AddError(msg)
	}
}

// checkExpect returns a failure message, or "" when the outcome matches.
func checkExpect(n int, step Step, ret any, err error) string {
	prefix := fmt.Sprintf("steps[%d] %s", n-1, step.Call())
	expect := step.Expect

	if !expect.ExpectsError() {
		if err != nil {
			return fmt.Sprintf("%s: unexpected error: %v", prefix, err)
		}
		if expect != nil && expect.Return != nil && !matchValue(ret, expect.Return) {
			return fmt.Sprintf("%s: return mismatch: expected %s, got %s", prefix, describe(expect.Return), describe(ret))
		}
		return ""
	}

	if err == nil {
		return fmt.Sprintf("%s: expected an error, got %s", prefix, describe(ret))
	}
	if expect.Error != "" && !containsFold(err.Error(), expect.Error) {
		return fmt.Sprintf("%s: error %q does not contain %q", prefix, err.Error(), expect.Error)
	}
	if expect.ErrorClass != "" {
		var re *dump.RecordedError
		if !errors.As(err, &re) {
			return fmt.Sprintf("%s: expected a recorded %s failure, got %v", prefix, expect.ErrorClass, err)
		}
		if re.ClassName() != expect.ErrorClass {
			return fmt.Sprintf("%s: expected error class %s, got %s", prefix, expect.ErrorClass, re.ClassName())
		}
	}
	return ""
}
