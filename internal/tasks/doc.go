// Package tasks provides the concrete task kinds gatehook registers at
// startup: user-defined shell tasks declared under custom_tasks and a small
// set of native file hygiene checks.
//
// Native tasks read and write through an afero.Fs rooted at the filesystem
// root, so tests can substitute an in-memory filesystem.
package tasks
