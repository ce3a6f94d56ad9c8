// Package activity implements the per-agent week program state machine.
//
// Every agent follows a WeekPattern: one DayPattern per weekday, each an
// ordered list of Activities. The agent's position in its week is a packed
// Cursor (weekday<<12 | dayIndex); the sentinel Filler (-1) means "nothing
// scheduled, idle in place until midnight".
//
// The Machine turns a finished activity into the next one. It reads the
// simulated time to detect midnight crossings and applies the day-boundary
// rules in a fixed order:
//
//  1. the old day ended exactly at this step: start the new day
//  2. the next old-day activity is flagged StartAfterMidnight: run it
//  3. otherwise: snap the agent to where the old day's last activity would
//     have left it, then start the new day
//
// Activity execution is eager: membership moves to the target location when
// the activity starts, and exactly one completion action is scheduled.
package activity
