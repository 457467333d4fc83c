// Package dag resolves dependency graphs of named nodes for gatehook.
//
// The same Graph serves task-level resolution (a hook's flat task list) and
// stage-level resolution (a hook's stage pipeline):
//   - Validating that every dependency names a node of the same graph
//   - Detecting cycles and reporting the full cycle path
//   - Grouping nodes into waves for maximal safe parallelism
//   - Computing the ready set for success-gated scheduling loops
//
// RunConcurrently is the fan-out/join primitive shared by the task and stage
// executors.
package dag
