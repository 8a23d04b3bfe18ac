package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeExecute(t *testing.T) {
	tests := []struct {
		name string
		data string
		want ExecuteMsg
	}{
		{"add without priority", `{"add":{"addr":"USER1"}}`, AddMsg{Addr: "USER1"}},
		{"add with priority", `{"add":{"addr":"USER1","priority":5}}`, AddMsg{Addr: "USER1", Priority: 5}},
		{"remove", `{"remove":{"addr":"USER1"}}`, RemoveMsg{Addr: "USER1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeExecute([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, msg)
		})
	}
}

func TestDecodeExecuteErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"not an object", `[]`, "decode execute"},
		{"no variant", `{}`, "exactly one variant"},
		{"two variants", `{"add":{"addr":"A"},"remove":{"addr":"A"}}`, "exactly one variant"},
		{"unknown variant", `{"transfer":{}}`, "unknown variant"},
		{"unknown field", `{"add":{"addr":"A","dao":"B"}}`, "unknown field"},
		{"missing addr", `{"remove":{}}`, "addr is required"},
		{"negative priority", `{"add":{"addr":"A","priority":-1}}`, "decode execute add"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeExecute([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecodeQuery(t *testing.T) {
	msg, err := DecodeQuery([]byte(`{"list_members":{}}`))
	require.NoError(t, err)
	assert.Equal(t, ListMembersQuery{}, msg)

	msg, err = DecodeQuery([]byte(`{"contract_info":{}}`))
	require.NoError(t, err)
	assert.Equal(t, ContractInfoQuery{}, msg)

	_, err = DecodeQuery([]byte(`{"list_members":{"limit":10}}`))
	require.Error(t, err)
}

func TestDecodeInstantiate(t *testing.T) {
	_, err := DecodeInstantiate([]byte(`{}`))
	require.NoError(t, err)

	_, err = DecodeInstantiate([]byte(`{"owner":"X"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected fields")
}

func TestEncodeMsgRoundTrip(t *testing.T) {
	msgs := []ExecuteMsg{
		AddMsg{Addr: "USER1", Priority: 9},
		RemoveMsg{Addr: "USER1"},
	}

	for _, m := range msgs {
		data, err := EncodeMsg(m)
		require.NoError(t, err)

		decoded, err := DecodeExecute(data)
		require.NoError(t, err)
		assert.Equal(t, m, decoded)
	}
}

func TestMethodAndKind(t *testing.T) {
	tests := []struct {
		msg    Msg
		method string
		kind   string
	}{
		{InstantiateMsg{}, MethodInstantiate, KindInstantiate},
		{AddMsg{Addr: "A"}, MethodAdd, KindExecute},
		{RemoveMsg{Addr: "A"}, MethodRemove, KindExecute},
		{ListMembersQuery{}, MethodListMembers, KindQuery},
		{ContractInfoQuery{}, MethodContractInfo, KindQuery},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			assert.Equal(t, tt.method, MethodOf(tt.msg))
			assert.Equal(t, tt.kind, KindOf(tt.msg))
		})
	}
}
