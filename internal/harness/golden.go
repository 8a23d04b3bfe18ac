package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/memberreg/internal/ir"
)

// Snapshot returns the canonical JSON trace used for golden comparison.
//
// Transaction IDs are left out so the snapshot depends only on what the
// registry did, not on how IDs are generated.
func Snapshot(name string, result *Result) ([]byte, error) {
	trace := make([]any, len(result.Trace))
	for i, event := range result.Trace {
		m := map[string]any{
			"step":    event.Step,
			"kind":    event.Kind,
			"msg":     event.Msg,
			"outcome": event.Outcome,
		}
		if event.Sender != "" {
			m["sender"] = event.Sender
		}
		if event.Seq != 0 {
			m["seq"] = event.Seq
		}
		if event.Kind != ir.KindQuery {
			m["attributes"] = attributesToIR(event.Attributes)
		}
		if event.Response != nil {
			m["response"] = event.Response
		}
		trace[i] = m
	}

	snapshot := map[string]any{
		"scenario_name": name,
		"trace":         trace,
		"members":       ir.MembersToIR(result.Members),
	}
	if result.Owner != "" {
		snapshot["owner"] = string(result.Owner)
	}
	return ir.MarshalCanonical(snapshot)
}

func attributesToIR(attrs []ir.Attribute) ir.IRArray {
	arr := make(ir.IRArray, len(attrs))
	for i, a := range attrs {
		arr[i] = ir.IRObject{
			"key":   ir.IRString(a.Key),
			"value": ir.IRString(a.Value),
		}
	}
	return arr
}

// newGoldie returns the goldie instance used for scenario traces.
func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	newGoldie(t).Assert(t, scenarioName, traceJSON)
	return nil
}
