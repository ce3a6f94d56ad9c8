package modeldef

import (
	"fmt"
	"math"

	"github.com/roach88/agentsim/internal/activity"
	"github.com/roach88/agentsim/internal/model"
	"github.com/roach88/agentsim/internal/names"
)

// Activity kinds accepted in model files.
const (
	KindStay   = "stay"
	KindTravel = "travel"
)

// reserved are person properties the kernel owns.
var reserved = map[string]bool{
	model.PropCursor:      true,
	model.PropWeekPattern: true,
	model.PropLocation:    true,
	model.PropMember:      true,
	model.PropPhase:       true,
}

// maxPhases is bounded by the byte-wide phase property.
const maxPhases = math.MaxInt8 + 1

// Validate checks the structure of def and canonicalizes every name in
// place. Population records are not checked here; Build skips the ones
// that do not resolve.
func Validate(def *Definition) error {
	canonicalize(def)

	if def.Name == "" {
		return required("name")
	}
	if !finite(def.StartHour) || def.StartHour < 0 {
		return invalid("start_hour", "must be a finite, non-negative hour, got %v", def.StartHour)
	}
	if !finite(def.HorizonHours) || def.HorizonHours <= 0 {
		return invalid("horizon_hours", "must be a finite, positive number of hours, got %v", def.HorizonHours)
	}
	if !finite(def.ReportEveryHours) || def.ReportEveryHours < 0 {
		return invalid("report_every_hours", "must be finite and non-negative, got %v", def.ReportEveryHours)
	}

	types := make(map[string]bool, len(def.LocationTypes))
	for i, t := range def.LocationTypes {
		if t == "" {
			return required(fmt.Sprintf("location_types[%d]", i))
		}
		if types[t] {
			return duplicate(fmt.Sprintf("location_types[%d]", i), t)
		}
		types[t] = true
	}

	locations := make(map[string]bool, len(def.Locations))
	for i, l := range def.Locations {
		field := fmt.Sprintf("locations[%d]", i)
		if l.Name == "" {
			return required(field + ".name")
		}
		if locations[l.Name] {
			return duplicate(field, l.Name)
		}
		if !types[l.Type] {
			return reference(field+".type", "location type", l.Type)
		}
		if l.Capacity < 0 {
			return invalid(field+".capacity", "must be non-negative, got %d", l.Capacity)
		}
		locations[l.Name] = true
	}

	activities := make(map[string]bool, len(def.Activities))
	for i, a := range def.Activities {
		field := fmt.Sprintf("activities[%d]", i)
		if a.Name == "" {
			return required(field + ".name")
		}
		if activities[a.Name] {
			return duplicate(field, a.Name)
		}
		switch a.Kind {
		case "", KindStay:
			if a.From != nil || a.To != nil {
				return invalid(field, "from/to are only valid on travel activities")
			}
		case KindTravel:
		default:
			return invalid(field+".kind", "must be %q or %q, got %q", KindStay, KindTravel, a.Kind)
		}
		if err := validateLocator(field+".at", a.At, locations); err != nil {
			return err
		}
		for _, end := range []struct {
			suffix string
			loc    *LocatorDef
		}{{".from", a.From}, {".to", a.To}} {
			if end.loc == nil {
				continue
			}
			if err := validateLocator(field+end.suffix, *end.loc, locations); err != nil {
				return err
			}
		}
		if math.IsInf(a.Hours, 0) || a.Hours < 0 {
			return invalid(field+".hours", "must be finite and non-negative, got %v", a.Hours)
		}
		activities[a.Name] = true
	}

	days := make(map[string]bool, len(def.DayPatterns))
	for i, d := range def.DayPatterns {
		field := fmt.Sprintf("day_patterns[%d]", i)
		if d.Name == "" {
			return required(field + ".name")
		}
		if days[d.Name] {
			return duplicate(field, d.Name)
		}
		if len(d.Activities) > activity.MaxActivitiesPerDay {
			return invalid(field+".activities", "%d activities exceed the limit of %d", len(d.Activities), activity.MaxActivitiesPerDay)
		}
		for j, name := range d.Activities {
			if !activities[name] {
				return reference(fmt.Sprintf("%s.activities[%d]", field, j), "activity", name)
			}
		}
		days[d.Name] = true
	}

	if len(def.WeekPatterns) == 0 {
		return required("week_patterns")
	}
	weeks := make(map[string]bool, len(def.WeekPatterns))
	for i, w := range def.WeekPatterns {
		field := fmt.Sprintf("week_patterns[%d]", i)
		if w.Name == "" {
			return required(field + ".name")
		}
		if weeks[w.Name] {
			return duplicate(field, w.Name)
		}
		switch {
		case w.Every != "" && len(w.Days) > 0:
			return &LoadError{Code: ErrCodeWeekPattern, Field: field, Message: "give either days or every, not both"}
		case w.Every != "":
			if !days[w.Every] {
				return reference(field+".every", "day pattern", w.Every)
			}
		case len(w.Days) != activity.DaysPerWeek:
			return &LoadError{Code: ErrCodeWeekPattern, Field: field + ".days",
				Message: fmt.Sprintf("needs %d day patterns, got %d", activity.DaysPerWeek, len(w.Days))}
		default:
			for j, name := range w.Days {
				if !days[name] {
					return reference(fmt.Sprintf("%s.days[%d]", field, j), "day pattern", name)
				}
			}
		}
		weeks[w.Name] = true
	}

	if def.Disease != nil {
		if err := validateDisease(def.Disease); err != nil {
			return err
		}
	}
	return nil
}

func validateLocator(field string, loc LocatorDef, locations map[string]bool) error {
	set := 0
	if loc.Property != "" {
		set++
		if reserved[loc.Property] {
			return invalid(field+".property", "%q is not a location property", loc.Property)
		}
	}
	if loc.Location != "" {
		set++
		if !locations[loc.Location] {
			return reference(field+".location", "location", loc.Location)
		}
	}
	if loc.Current {
		set++
	}
	if set != 1 {
		return invalid(field, "exactly one of property, location or current must be set")
	}
	return nil
}

func validateDisease(d *DiseaseDef) error {
	if d.Name == "" {
		return required("disease.name")
	}
	if len(d.Phases) == 0 {
		return required("disease.phases")
	}
	if len(d.Phases) > maxPhases {
		return invalid("disease.phases", "%d phases exceed the limit of %d", len(d.Phases), maxPhases)
	}
	seen := make(map[string]bool, len(d.Phases))
	for i, p := range d.Phases {
		field := fmt.Sprintf("disease.phases[%d]", i)
		if p.Name == "" {
			return required(field + ".name")
		}
		if seen[p.Name] {
			return duplicate(field, p.Name)
		}
		seen[p.Name] = true
		if !finite(p.DwellHours) || p.DwellHours < 0 {
			return invalid(field+".dwell_hours", "must be finite and non-negative, got %v", p.DwellHours)
		}
		if !finite(p.Jitter) || p.Jitter < 0 || p.Jitter > 1 {
			return invalid(field+".jitter", "must be in [0, 1], got %v", p.Jitter)
		}
	}
	for i, p := range d.Phases {
		if p.Next != "" && !seen[p.Next] {
			return reference(fmt.Sprintf("disease.phases[%d].next", i), "phase", p.Next)
		}
	}
	return nil
}

func canonicalize(def *Definition) {
	def.Name = names.Canonical(def.Name)
	for i := range def.LocationTypes {
		def.LocationTypes[i] = names.Canonical(def.LocationTypes[i])
	}
	for i := range def.Locations {
		l := &def.Locations[i]
		l.Name = names.Canonical(l.Name)
		l.Type = names.Canonical(l.Type)
	}
	for i := range def.Activities {
		a := &def.Activities[i]
		a.Name = names.Canonical(a.Name)
		a.Kind = names.Canonical(a.Kind)
		canonicalLocator(&a.At)
		canonicalLocator(a.From)
		canonicalLocator(a.To)
	}
	for i := range def.DayPatterns {
		d := &def.DayPatterns[i]
		d.Name = names.Canonical(d.Name)
		canonicalList(d.Activities)
	}
	for i := range def.WeekPatterns {
		w := &def.WeekPatterns[i]
		w.Name = names.Canonical(w.Name)
		w.Every = names.Canonical(w.Every)
		canonicalList(w.Days)
	}
	if d := def.Disease; d != nil {
		d.Name = names.Canonical(d.Name)
		for i := range d.Phases {
			p := &d.Phases[i]
			p.Name = names.Canonical(p.Name)
			p.Class = names.Canonical(p.Class)
			p.Next = names.Canonical(p.Next)
		}
	}
	for i := range def.Population {
		p := &def.Population[i]
		p.Home = names.Canonical(p.Home)
		p.Work = names.Canonical(p.Work)
		p.WeekPattern = names.Canonical(p.WeekPattern)
		p.Phase = names.Canonical(p.Phase)
	}
}

func canonicalLocator(l *LocatorDef) {
	if l == nil {
		return
	}
	l.Property = names.Canonical(l.Property)
	l.Location = names.Canonical(l.Location)
}

func canonicalList(list []string) {
	for i := range list {
		list[i] = names.Canonical(list[i])
	}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func required(field string) error {
	return &LoadError{Code: ErrCodeRequired, Field: field, Message: "is required"}
}

func duplicate(field, name string) error {
	return &LoadError{Code: ErrCodeDuplicate, Field: field, Message: fmt.Sprintf("duplicate name %q", name)}
}

func reference(field, what, name string) error {
	return &LoadError{Code: ErrCodeReference, Field: field, Message: fmt.Sprintf("unknown %s %q", what, name)}
}

func invalid(field, format string, args ...any) error {
	return &LoadError{Code: ErrCodeInvalid, Field: field, Message: fmt.Sprintf(format, args...)}
}
