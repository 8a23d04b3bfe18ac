// Package schema validates raw wire messages against the embedded CUE contract.
//
// Validation runs before decoding so malformed requests are rejected with a
// positioned CUE error instead of reaching the registry.
package schema

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed msg.cue
var msgCUE string

// Definition names in msg.cue.
const (
	DefInstantiate  = "#InstantiateMsg"
	DefExecute      = "#ExecuteMsg"
	DefQuery        = "#QueryMsg"
	DefListMembers  = "#ListMembersResponse"
	DefContractInfo = "#ContractInfoResponse"
)

// Validator checks JSON documents against the message definitions.
// A Validator is not safe for concurrent use; the host holds its own lock.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// ValidationError reports a message that does not satisfy its definition.
type ValidationError struct {
	Definition string
	Details    []string
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("message does not match %s", e.Definition)
	}
	return fmt.Sprintf("message does not match %s: %s", e.Definition, e.Details[0])
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(msgCUE, cue.Filename("msg.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile message schema: %w", err)
	}
	return &Validator{ctx: ctx, schema: v}, nil
}

// Validate checks data against the named definition.
func (v *Validator) Validate(definition string, data []byte) error {
	def := v.schema.LookupPath(cue.ParsePath(definition))
	if !def.Exists() {
		return fmt.Errorf("unknown schema definition %s", definition)
	}

	doc := v.ctx.CompileBytes(data, cue.Filename("message.json"))
	if err := doc.Err(); err != nil {
		return &ValidationError{Definition: definition, Details: details(err)}
	}

	unified := def.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Definition: definition, Details: details(err)}
	}
	return nil
}

// ValidateInstantiate checks an instantiate message.
func (v *Validator) ValidateInstantiate(data []byte) error {
	return v.Validate(DefInstantiate, data)
}

// ValidateExecute checks an execute message.
func (v *Validator) ValidateExecute(data []byte) error {
	return v.Validate(DefExecute, data)
}

// ValidateQuery checks a query message.
func (v *Validator) ValidateQuery(data []byte) error {
	return v.Validate(DefQuery, data)
}

// ValidateListMembers checks a list_members response.
func (v *Validator) ValidateListMembers(data []byte) error {
	return v.Validate(DefListMembers, data)
}

// ValidateContractInfo checks a contract_info response.
func (v *Validator) ValidateContractInfo(data []byte) error {
	return v.Validate(DefContractInfo, data)
}

func details(err error) []string {
	var out []string
	for _, e := range errors.Errors(err) {
		out = append(out, e.Error())
	}
	return out
}
