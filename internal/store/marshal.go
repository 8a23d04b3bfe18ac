package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/memberreg/internal/ir"
)

// marshalAttributes converts response attributes to canonical JSON TEXT.
// Attribute order is preserved; it is part of the response.
func marshalAttributes(attrs []ir.Attribute) (string, error) {
	arr := make(ir.IRArray, 0, len(attrs))
	for _, a := range attrs {
		arr = append(arr, ir.IRObject{
			"key":   ir.IRString(a.Key),
			"value": ir.IRString(a.Value),
		})
	}
	data, err := ir.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal attributes: %w", err)
	}
	return string(data), nil
}

// unmarshalAttributes parses the attributes column.
// Always returns a non-nil slice.
func unmarshalAttributes(data string) ([]ir.Attribute, error) {
	attrs := []ir.Attribute{}
	if data == "" || data == "[]" {
		return attrs, nil
	}
	if err := json.Unmarshal([]byte(data), &attrs); err != nil {
		return nil, fmt.Errorf("unmarshal attributes: %w", err)
	}
	return attrs, nil
}
