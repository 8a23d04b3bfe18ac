package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/memberreg/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes the final member list to help debug the failure.
type AssertionError struct {
	Type     string      // Assertion type for categorization
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Members  []ir.Member // Final members for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFinal members:\n")
	if len(e.Members) == 0 {
		fmt.Fprintf(&buf, "  (none)\n")
	}
	for i, m := range e.Members {
		fmt.Fprintf(&buf, "  [%d] %s priority=%d\n", i+1, m.Addr, m.Priority)
	}

	return buf.String()
}

func assertMemberCount(result *Result, a Assertion) error {
	if len(result.Members) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertMemberCount,
		Expected: fmt.Sprintf("%d members", a.Count),
		Actual:   fmt.Sprintf("%d members", len(result.Members)),
		Members:  result.Members,
	}
}

func assertContains(result *Result, a Assertion) error {
	i := slices.IndexFunc(result.Members, func(m ir.Member) bool {
		return m.Addr == ir.Addr(a.Addr)
	})
	if i < 0 {
		return &AssertionError{
			Type:     AssertContains,
			Expected: fmt.Sprintf("member %s", a.Addr),
			Actual:   "not found",
			Members:  result.Members,
		}
	}
	if a.Priority != nil && result.Members[i].Priority != *a.Priority {
		return &AssertionError{
			Type:     AssertContains,
			Expected: fmt.Sprintf("member %s with priority %d", a.Addr, *a.Priority),
			Actual:   fmt.Sprintf("priority %d", result.Members[i].Priority),
			Members:  result.Members,
		}
	}
	return nil
}

func assertNotContains(result *Result, a Assertion) error {
	for _, m := range result.Members {
		if m.Addr == ir.Addr(a.Addr) {
			return &AssertionError{
				Type:     AssertNotContains,
				Expected: fmt.Sprintf("no member %s", a.Addr),
				Actual:   "found",
				Members:  result.Members,
			}
		}
	}
	return nil
}

func assertLogCount(result *Result, a Assertion) error {
	count := 0
	for _, rec := range result.Log {
		if a.Outcome == "" || rec.Outcome == a.Outcome {
			count++
		}
	}
	if count == a.Count {
		return nil
	}

	what := "log entries"
	if a.Outcome != "" {
		what = fmt.Sprintf("log entries with outcome %s", a.Outcome)
	}
	return &AssertionError{
		Type:     AssertLogCount,
		Expected: fmt.Sprintf("%d %s", a.Count, what),
		Actual:   fmt.Sprintf("%d %s", count, what),
		Members:  result.Members,
	}
}

func assertOwner(result *Result, a Assertion) error {
	if result.Owner == ir.Addr(a.Addr) {
		return nil
	}
	actual := string(result.Owner)
	if actual == "" {
		actual = "(not instantiated)"
	}
	return &AssertionError{
		Type:     AssertOwner,
		Expected: a.Addr,
		Actual:   actual,
		Members:  result.Members,
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertMemberCount:
			err = assertMemberCount(result, assertion)
		case AssertContains:
			err = assertContains(result, assertion)
		case AssertNotContains:
			err = assertNotContains(result, assertion)
		case AssertLogCount:
			err = assertLogCount(result, assertion)
		case AssertOwner:
			err = assertOwner(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
