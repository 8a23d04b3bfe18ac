// Package harness runs YAML scenarios against a real registry host.
//
// # Scenario Format
//
//	name: add_remove
//	description: "Owner adds two members and removes one"
//	steps:
//	  - sender: owner
//	    instantiate: {}
//	    expect:
//	      attributes: { method: instantiate, owner: owner }
//	  - sender: owner
//	    execute: { add: { addr: u1, priority: 5 } }
//	  - sender: mallory
//	    execute: { remove: { addr: u1 } }
//	    expect:
//	      error: Unauthorized
//	  - sender: anyone
//	    query: { list_members: {} }
//	    expect:
//	      members:
//	        - { addr: u1, priority: 5 }
//	assertions:
//	  - type: member_count
//	    count: 1
//	  - type: contains
//	    addr: u1
//
// Each step carries exactly one of instantiate, execute or query. Its map is
// encoded as JSON and sent through the host's raw entry points, so schema
// validation and decoding are exercised like any other request. A step with
// no expect clause must succeed.
//
// # Assertion Types
//
//   - member_count: final list has exactly count members
//   - contains: addr is a member (with priority, if given)
//   - not_contains: addr is not a member
//   - log_count: the transaction log has count entries (with outcome, if given)
//   - owner: the registry owner is addr
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory store with a
// testutil.DeterministicClock and a testutil.SequentialIDGenerator, so the
// same scenario always produces the same trace. RunWithGolden compares that
// trace against testdata/golden/<name>.golden.
package harness
