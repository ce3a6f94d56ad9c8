// Package sim wires a built model to the scheduling kernel.
//
// A Simulation owns one Scheduler and drives three kinds of deferred
// actions through it:
//
//   - activity completions, via activity.Machine (priority 0)
//   - phase transitions, decided by a phase.Policy (priority 1)
//   - periodic snapshots handed to a Reporter (priority 10)
//
// Lower priorities run first among actions due at the same instant, so a
// snapshot always sees every transition scheduled for its time.
//
// Runs are deterministic: the same model and seed produce the same action
// order, the same trace and the same snapshots.
package sim
