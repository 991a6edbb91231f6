// Package tzlookup resolves coordinates to IANA timezones with an offline
// polygon index, so historical start dates get DST-correct offsets without a
// network dependency.
package tzlookup

import (
	"fmt"
	"sync"
	"time"

	// Embed the zone database; minimal hosts and scratch containers lack one.
	_ "time/tzdata"

	"github.com/ringsaturn/tzf"
)

// Resolver maps a coordinate pair to its timezone.
// It implements domain.TimezoneResolver.
type Resolver struct {
	finder tzf.F
}

// New builds a Resolver on the default compressed polygon data.
func New() (*Resolver, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("init timezone finder: %w", err)
	}
	return &Resolver{finder: finder}, nil
}

var (
	defaultOnce     sync.Once
	defaultResolver *Resolver
	defaultErr      error
)

// Default returns a process-wide shared Resolver; building the polygon index
// is expensive, so callers share one.
func Default() (*Resolver, error) {
	defaultOnce.Do(func() {
		defaultResolver, defaultErr = New()
	})
	return defaultResolver, defaultErr
}

// Resolve returns the IANA location containing (lat, lon).
func (r *Resolver) Resolve(lat, lon float64) (*time.Location, error) {
	name := r.finder.GetTimezoneName(lon, lat)
	if name == "" {
		return nil, fmt.Errorf("no timezone found for (%v, %v)", lat, lon)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", name, err)
	}
	return loc, nil
}
