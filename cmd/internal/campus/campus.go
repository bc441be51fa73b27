// Package campus is the read-only directory of venues and their service times.
package campus

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when a campus id does not resolve.
var ErrNotFound = errors.New("campus not found")

// Campus is a venue guests are invited to.
type Campus struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	ServiceTimes []string `json:"service_times"`
}

// DefaultTime is the first configured service time, or "" when none are set.
func (c Campus) DefaultTime() string {
	if len(c.ServiceTimes) == 0 {
		return ""
	}
	return c.ServiceTimes[0]
}

// HasTime reports whether t is one of the campus's service times.
func (c Campus) HasTime(t string) bool {
	for _, st := range c.ServiceTimes {
		if st == t {
			return true
		}
	}
	return false
}

// Directory lists campuses.
type Directory interface {
	// List returns every campus ordered by name.
	List(ctx context.Context) ([]Campus, error)
	Get(ctx context.Context, id string) (Campus, error)
}

// Seeder writes campuses, replacing rows with the same id.
type Seeder interface {
	Upsert(ctx context.Context, cs ...Campus) error
}

// DefaultCampuses is the seed set used by the seed command and in-memory mode.
func DefaultCampuses() []Campus {
	return []Campus{
		{ID: "tcn-ikeja", Name: "TCN Ikeja", Address: "12 Obafemi Awolowo Way, Ikeja, Lagos", ServiceTimes: []string{"7:30 AM", "9:00 AM", "11:00 AM"}},
		{ID: "tcn-lekki", Name: "TCN Lekki", Address: "Admiralty Way, Lekki Phase 1, Lagos", ServiceTimes: []string{"8:00 AM", "10:30 AM"}},
		{ID: "tcn-yaba", Name: "TCN Yaba", Address: "Herbert Macaulay Way, Yaba, Lagos", ServiceTimes: []string{"9:00 AM"}},
		{ID: "tcn-abuja", Name: "TCN Abuja", Address: "Wuse II, Abuja", ServiceTimes: []string{"8:00 AM", "10:00 AM", "5:00 PM"}},
	}
}

func clean(c Campus) Campus {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = strings.TrimSpace(c.Name)
	c.Address = strings.TrimSpace(c.Address)
	times := make([]string, 0, len(c.ServiceTimes))
	for _, t := range c.ServiceTimes {
		if t = strings.TrimSpace(t); t != "" {
			times = append(times, t)
		}
	}
	c.ServiceTimes = times
	return c
}
