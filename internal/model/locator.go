package model

import (
	"log/slog"

	"github.com/roach88/agentsim/internal/activity"
)

// Fixed resolves every person to the same location.
func Fixed(l *Location) activity.Locator {
	return activity.LocatorFunc(func(int) activity.Place { return l })
}

// Current resolves a person to their current location.
func Current(r *Registry) activity.Locator {
	return activity.LocatorFunc(func(agent int) activity.Place {
		return r.pop.CurrentLocation(agent)
	})
}

// Property resolves a person to the location stored in a location-valued
// property (e.g. "home", "work").
//
// If the property is unset the person stays where they are. If the
// location is closed the person goes home instead, when a home is set.
func Property(r *Registry, name string) activity.Locator {
	return activity.LocatorFunc(func(agent int) activity.Place {
		pop := r.pop
		l, ok := pop.LocationProperty(name, agent)
		if !ok {
			return pop.CurrentLocation(agent)
		}
		if !l.Open() && name != PropHome {
			if home, ok := pop.LocationProperty(PropHome, agent); ok {
				slog.Debug("location closed, staying home", "agent", agent, "location", l.ID(), "home", home.ID())
				return home
			}
		}
		return l
	})
}
