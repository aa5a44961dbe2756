// Package taskrunner is the embeddable entry point for running chore tasks
// from other Go programs. It wraps taskfile loading, plan resolution, and
// fail-fast execution behind two calls (`Run`, `Plan`) so hosts can execute
// tasks without wiring the internal packages themselves, while unit tests can
// swap in fake command runners.
package taskrunner
