// Package task defines the contract between the gatehook core and the
// pluggable units of work it schedules.
//
// A Task advertises an immutable Descriptor (identifier, applicable hooks,
// fix support and fix safety, blocking default, file patterns) and exposes a
// check operation and a fix operation. Tasks are collected once at startup
// into a Registry, which is read-only afterwards and safe for concurrent use.
//
// The package also holds the values that flow through a run: the
// ExecutionContext handed to every task, the Result of a check, and the
// FixResult of a fix.
package task
