// Package host runs the registry the way a hosting environment would.
//
// The host is the only caller of package registry. For each request it:
//
//  1. decodes and validates the wire message (the *Raw entry points)
//  2. loads the registry state from the "state" record
//  3. dispatches once over the message sum type into the registry
//  4. writes the updated state and appends a transaction log entry
//
// Steps 2-4 run inside one store transaction. A registry rejection is
// recorded in the log with its error code as the outcome, but the state
// record is never written for it. Infrastructure failures roll the whole
// call back and leave no trace.
//
// # Concurrency
//
// A Host serializes every call behind one mutex: there is exactly one
// writer per registry, so the read-modify-write of the state record never
// races.
//
// # Ordering
//
// Logged transactions are stamped by a logical clock (Sequencer). A host
// opened on an existing database resumes after the last logged seq.
package host
