package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows a future algorithm migration.
const (
	DomainTx    = "memberreg/tx/v1"
	DomainState = "memberreg/state/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TxID computes the content-addressed ID of a transaction.
// The same sender, message and sequence number always produce the same ID.
func TxID(sender Addr, msg Msg, seq int64) (string, error) {
	obj := IRObject{
		"sender": IRString(sender),
		"msg":    MsgObject(msg),
		"seq":    IRInt(seq),
	}

	canonical, err := marshalHashInput(obj)
	if err != nil {
		return "", fmt.Errorf("TxID: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainTx, canonical), nil
}

// StateHash returns a digest of the persisted encoding of a state.
// Two states hash equally only if their owner and ordered list are
// byte-for-byte equal.
func StateHash(s State) (string, error) {
	data, err := MarshalState(s)
	if err != nil {
		return "", fmt.Errorf("StateHash: %w", err)
	}
	return hashWithDomain(DomainState, data), nil
}
