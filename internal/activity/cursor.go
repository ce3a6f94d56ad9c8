package activity

import (
	"fmt"
	"math"
)

const (
	// DaysPerWeek is the number of weekdays in a WeekPattern. Monday is 0.
	DaysPerWeek = 7

	// MaxDayIndex is the largest slot index a cursor can address.
	MaxDayIndex = 0xFFF

	// MaxActivitiesPerDay is the DayPattern length ceiling.
	MaxActivitiesPerDay = MaxDayIndex + 1

	// HoursPerDay is the length of a simulated day.
	HoursPerDay = 24.0

	// MidnightEpsilon offsets time before the weekday computation so that
	// an activity ending at 23.99999... still rolls over at midnight.
	MidnightEpsilon = 0.01

	weekdayShift = 12
	dayIndexMask = 0xFFF
)

// Cursor is an agent's packed position in its week program.
type Cursor int32

// Filler is the sentinel cursor: no activity scheduled until midnight.
const Filler Cursor = -1

// MakeCursor packs a weekday and slot index.
// Panics if either is out of range.
func MakeCursor(weekday, dayIndex int) Cursor {
	if weekday < 0 || weekday >= DaysPerWeek {
		panic(fmt.Sprintf("activity: weekday %d out of range [0,%d)", weekday, DaysPerWeek))
	}
	if dayIndex < 0 || dayIndex > MaxDayIndex {
		panic(fmt.Sprintf("activity: day index %d out of range [0,%d]", dayIndex, MaxDayIndex))
	}
	return Cursor(weekday<<weekdayShift | dayIndex)
}

// Weekday returns the weekday component (0 = Monday).
func (c Cursor) Weekday() int { return int(c) >> weekdayShift }

// DayIndex returns the slot index within the weekday's DayPattern.
func (c Cursor) DayIndex() int { return int(c) & dayIndexMask }

// IsFiller reports whether c is the Filler sentinel.
func (c Cursor) IsFiller() bool { return c == Filler }

// Valid reports whether c is Filler or a well-formed packed cursor.
func (c Cursor) Valid() bool {
	return c == Filler || (c >= 0 && c.Weekday() < DaysPerWeek)
}

func (c Cursor) String() string {
	if c == Filler {
		return "filler"
	}
	return fmt.Sprintf("%d/%d", c.Weekday(), c.DayIndex())
}

// Weekday returns the weekday (0 = Monday) at simulated time t, in hours
// since Monday 00:00.
func Weekday(t float64) int {
	return int(math.Floor((t+MidnightEpsilon)/HoursPerDay)) % DaysPerWeek
}

// UntilMidnight returns the hours from t to the next midnight.
func UntilMidnight(t float64) float64 {
	day := math.Floor((t + MidnightEpsilon) / HoursPerDay)
	return (day+1)*HoursPerDay - t
}
