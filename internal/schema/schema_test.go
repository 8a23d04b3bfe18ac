package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New()
	require.NoError(t, err)
	return v
}

func TestValidateExecute(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name  string
		data  string
		valid bool
	}{
		{"add", `{"add":{"addr":"USER1"}}`, true},
		{"add with priority", `{"add":{"addr":"USER1","priority":7}}`, true},
		{"remove", `{"remove":{"addr":"USER1"}}`, true},
		{"empty object", `{}`, false},
		{"both variants", `{"add":{"addr":"A"},"remove":{"addr":"A"}}`, false},
		{"unknown variant", `{"transfer":{"addr":"A"}}`, false},
		{"unknown field", `{"add":{"addr":"A","dao":"B"}}`, false},
		{"empty addr", `{"remove":{"addr":""}}`, false},
		{"missing addr", `{"remove":{}}`, false},
		{"negative priority", `{"add":{"addr":"A","priority":-1}}`, false},
		{"priority overflow", `{"add":{"addr":"A","priority":4294967296}}`, false},
		{"float priority", `{"add":{"addr":"A","priority":1.5}}`, false},
		{"not json", `{"add":`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateExecute([]byte(tt.data))
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Equal(t, DefExecute, verr.Definition)
		})
	}
}

func TestValidateQuery(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.ValidateQuery([]byte(`{"list_members":{}}`)))
	assert.NoError(t, v.ValidateQuery([]byte(`{"contract_info":{}}`)))
	assert.Error(t, v.ValidateQuery([]byte(`{"list_members":{"start_after":"A"}}`)))
	assert.Error(t, v.ValidateQuery([]byte(`{"add":{"addr":"A"}}`)))
}

func TestValidateInstantiate(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.ValidateInstantiate([]byte(`{}`)))
	assert.Error(t, v.ValidateInstantiate([]byte(`{"owner":"ADMIN"}`)))
}

func TestValidateUnknownDefinition(t *testing.T) {
	v := newValidator(t)

	err := v.Validate("#Nope", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown schema definition")
}

func TestValidateListMembersResponse(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.ValidateListMembers([]byte(`{"members":[]}`)))
	assert.NoError(t, v.ValidateListMembers([]byte(`{"members":[{"addr":"USER1","priority":0}]}`)))
	assert.NoError(t, v.ValidateListMembers([]byte(`{"members":[{"addr":"e\u0301","priority":1}]}`)))
	assert.Error(t, v.ValidateListMembers([]byte(`{"members":[{"addr":"USER1"}]}`)))
	assert.Error(t, v.ValidateListMembers([]byte(`{"members":[{"addr":"USER1","priority":0,"extra":1}]}`)))
	assert.Error(t, v.ValidateListMembers([]byte(`{"members":[],"next":"x"}`)))
}

func TestValidateContractInfoResponse(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.ValidateContractInfo([]byte(`{"contract":"memberreg","version":"0.1.0"}`)))
	assert.Error(t, v.ValidateContractInfo([]byte(`{"contract":"memberreg"}`)))
	assert.Error(t, v.ValidateContractInfo([]byte(`{"contract":"","version":"0.1.0"}`)))
}
