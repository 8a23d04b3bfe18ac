package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/memberreg/internal/host"
	"github.com/roach88/memberreg/internal/ir"
	"github.com/roach88/memberreg/internal/store"
	"github.com/roach88/memberreg/internal/testutil"
)

// Harness executes scenario steps against one host.
type Harness struct {
	host  *host.Host
	clock *testutil.DeterministicClock
	ids   *testutil.SequentialIDGenerator
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Expectation and assertion failures are reported in Result.Errors; the
// returned error is reserved for scenarios that could not run at all.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		clock: testutil.NewDeterministicClock(),
		ids:   testutil.NewSequentialIDGenerator(),
	}
	h.host, err = host.New(ctx, st,
		host.WithClock(h.clock),
		host.WithTxIDGenerator(h.ids),
		host.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create host: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	if err := h.collectFinal(ctx, result); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// executeStep sends one step through the host's raw entry points, records
// the trace event and checks the step's expectations.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	kind, body := step.message()

	msg, err := ir.ToIRObject(body)
	if err != nil {
		return fmt.Errorf("convert %s message: %w", kind, err)
	}
	data, err := ir.MarshalCanonical(msg)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", kind, err)
	}

	event := TraceEvent{
		Step: index,
		Kind: kind,
		Msg:  msg,
	}
	if kind != ir.KindQuery {
		event.Sender = step.Sender
	}

	var (
		callErr  error
		receipt  host.Receipt
		response []byte
	)
	sender := ir.Addr(step.Sender)
	switch kind {
	case ir.KindInstantiate:
		receipt, callErr = h.host.InstantiateRaw(ctx, sender, data)
	case ir.KindExecute:
		receipt, callErr = h.host.ExecuteRaw(ctx, sender, data)
	case ir.KindQuery:
		response, callErr = h.host.QueryRaw(ctx, data)
	}

	event.Outcome = ir.OutcomeOK
	if callErr != nil {
		code, ok := host.Code(callErr)
		if !ok {
			return callErr
		}
		event.Outcome = code
	}
	event.Seq = receipt.Seq
	event.Attributes = receipt.Attributes

	if response != nil {
		var decoded map[string]any
		if err := json.Unmarshal(response, &decoded); err != nil {
			return fmt.Errorf("decode query response: %w", err)
		}
		event.Response, err = ir.ToIRObject(decoded)
		if err != nil {
			return fmt.Errorf("convert query response: %w", err)
		}
	}

	result.Trace = append(result.Trace, event)
	for _, msg := range checkExpect(index, step.Expect, event, response) {
		result.AddError(msg)
	}
	return nil
}

// checkExpect compares a step's outcome with its expect clause.
func checkExpect(index int, expect *Expect, event TraceEvent, response []byte) []string {
	var errs []string

	wantOutcome := ir.OutcomeOK
	if expect != nil && expect.Error != "" {
		wantOutcome = expect.Error
	}
	if event.Outcome != wantOutcome {
		errs = append(errs, fmt.Sprintf("step %d (%s): expected outcome %s, got %s",
			index, event.Kind, wantOutcome, event.Outcome))
		return errs
	}
	if expect == nil || event.Outcome != ir.OutcomeOK {
		return errs
	}

	if len(expect.Attributes) > 0 {
		got := ir.Response{Attributes: event.Attributes}
		for _, key := range slices.Sorted(maps.Keys(expect.Attributes)) {
			want := expect.Attributes[key]
			actual, ok := got.Attr(key)
			if !ok {
				errs = append(errs, fmt.Sprintf("step %d: attribute %q missing", index, key))
				continue
			}
			if actual != want {
				errs = append(errs, fmt.Sprintf("step %d: attribute %q = %q, want %q", index, key, actual, want))
			}
		}
	}

	if expect.Members != nil {
		var resp ir.ListMembersResponse
		if err := json.Unmarshal(response, &resp); err != nil {
			errs = append(errs, fmt.Sprintf("step %d: response is not a member list: %v", index, err))
			return errs
		}
		want := make([]ir.Member, len(expect.Members))
		for i, m := range expect.Members {
			want[i] = m.Member()
		}
		if !slices.Equal(resp.Members, want) {
			errs = append(errs, fmt.Sprintf("step %d: members = %v, want %v", index, resp.Members, want))
		}
	}

	return errs
}

// collectFinal records the final state and log.
func (h *Harness) collectFinal(ctx context.Context, result *Result) error {
	state, err := h.host.State(ctx)
	switch {
	case err == nil:
		result.Owner = state.Owner
		result.Members = state.List
	case host.IsNotInitialized(err):
		// Nothing was instantiated; leave the state empty.
	default:
		return fmt.Errorf("read final state: %w", err)
	}

	log, err := h.host.Log(ctx, store.TxFilter{})
	if err != nil {
		return fmt.Errorf("read transaction log: %w", err)
	}
	result.Log = log
	return nil
}
