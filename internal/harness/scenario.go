package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/memberreg/internal/ir"
)

// Scenario is a sequence of registry calls with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps run in order against one host.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state and log.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one call to the host.
type Step struct {
	// Sender is the caller identity. Ignored for queries.
	Sender string `yaml:"sender"`

	// Exactly one of the following is set. Each holds the wire message.
	Instantiate map[string]any `yaml:"instantiate,omitempty"`
	Execute     map[string]any `yaml:"execute,omitempty"`
	Query       map[string]any `yaml:"query,omitempty"`

	// Expect checks the outcome. Nil means the call must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Error is the expected rejection code (e.g. "Unauthorized").
	// Empty means the call must succeed.
	Error string `yaml:"error,omitempty"`

	// Attributes must be present in the response (subset match).
	Attributes map[string]string `yaml:"attributes,omitempty"`

	// Members is the exact list a list_members query must return.
	Members []MemberSpec `yaml:"members,omitempty"`
}

// MemberSpec is a member written in a scenario file.
type MemberSpec struct {
	Addr     string `yaml:"addr"`
	Priority uint32 `yaml:"priority"`
}

// Member converts the entry to an ir.Member.
func (m MemberSpec) Member() ir.Member {
	return ir.Member{Addr: ir.Addr(m.Addr), Priority: m.Priority}
}

// Assertion validates the state after all steps.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Addr is used by contains, not_contains and owner.
	Addr string `yaml:"addr,omitempty"`

	// Priority optionally narrows contains.
	Priority *uint32 `yaml:"priority,omitempty"`

	// Count is used by member_count and log_count.
	Count int `yaml:"count,omitempty"`

	// Outcome optionally narrows log_count ("ok" or an error code).
	Outcome string `yaml:"outcome,omitempty"`
}

// Assertion type constants.
const (
	AssertMemberCount = "member_count"
	AssertContains    = "contains"
	AssertNotContains = "not_contains"
	AssertLogCount    = "log_count"
	AssertOwner       = "owner"
)

// message returns the step's kind and wire message.
func (s Step) message() (string, map[string]any) {
	switch {
	case s.Instantiate != nil:
		return ir.KindInstantiate, s.Instantiate
	case s.Execute != nil:
		return ir.KindExecute, s.Execute
	default:
		return ir.KindQuery, s.Query
	}
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s *Step) error {
	set := 0
	for _, m := range []map[string]any{s.Instantiate, s.Execute, s.Query} {
		if m != nil {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of instantiate, execute, query is required", index)
	}

	kind, _ := s.message()
	if kind != ir.KindQuery && s.Sender == "" {
		return fmt.Errorf("steps[%d]: sender is required for %s", index, kind)
	}

	if s.Expect == nil {
		return nil
	}
	if s.Expect.Error != "" && (len(s.Expect.Attributes) > 0 || len(s.Expect.Members) > 0) {
		return fmt.Errorf("steps[%d].expect: error cannot be combined with attributes or members", index)
	}
	if kind == ir.KindQuery && len(s.Expect.Attributes) > 0 {
		return fmt.Errorf("steps[%d].expect: attributes are not returned by queries", index)
	}
	if kind != ir.KindQuery && s.Expect.Members != nil {
		return fmt.Errorf("steps[%d].expect: members is only valid for queries", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertMemberCount, AssertLogCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertContains, AssertNotContains, AssertOwner:
		if a.Addr == "" {
			return fmt.Errorf("assertions[%d]: addr is required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
