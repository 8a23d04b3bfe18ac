// Package ir provides the canonical data model for the member registry.
//
// This package contains the persisted record types, the request sum type and
// their encodings. All other internal packages import ir; ir imports nothing
// internal.
//
// Key design constraints:
//   - Persisted records are serialized with RFC 8785 canonical JSON
//   - NO float types anywhere - priorities are uint32, sequence numbers int64
//   - All JSON tags use snake_case
//   - Wire messages are externally tagged: {"add":{"addr":"..."}}
package ir
