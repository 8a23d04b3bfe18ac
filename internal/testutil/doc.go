// Package testutil holds deterministic stand-ins for the host's clock and
// transaction ID generator, plus store helpers shared by package tests.
package testutil
