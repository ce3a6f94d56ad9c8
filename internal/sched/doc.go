// Package sched implements the discrete-event scheduling kernel.
//
// The scheduler owns the simulated clock (floating-point hours) and a
// priority queue of deferred actions. Actions execute one at a time in a
// total order:
//
//  1. execution time, ascending
//  2. priority, ascending (lower value runs first)
//  3. submission order (FIFO)
//
// The order is fully determined by the calls made against the scheduler, so
// two runs that schedule the same actions in the same order replay the same
// trace. No goroutines, no wall-clock reads, no map iteration.
//
// A deferred action is a Task: a bound callable plus the identity of its
// target and operation, kept only for diagnostics. Waiting is represented
// purely as a pending Task; nothing in the kernel blocks.
//
// Failure policy: scheduling into the past is rejected with a
// SchedulingError and schedules nothing. A Task that returns an error (or
// panics) aborts the run with an ActionError naming the target, operation
// and simulated time. There is no rollback.
package sched
