package geo

import (
	"time"

	"github.com/nathan-osman/go-sunrise"

	"github.com/tilmanv/piwake/internal/ports"
)

// Almanac computes sunrise and sunset times for a fixed location.
type Almanac struct {
	loc Location
}

var _ ports.Almanac = (*Almanac)(nil)

// NewAlmanac creates an almanac for the given location.
func NewAlmanac(loc Location) *Almanac {
	return &Almanac{loc: loc}
}

// NextSunrise returns the first sunrise strictly after the given instant.
func (a *Almanac) NextSunrise(after time.Time) (time.Time, error) {
	return a.next(after, func(rise, _ time.Time) time.Time { return rise })
}

// NextSunset returns the first sunset strictly after the given instant.
func (a *Almanac) NextSunset(after time.Time) (time.Time, error) {
	return a.next(after, func(_, set time.Time) time.Time { return set })
}

// next scans day by day; two days always suffice outside polar latitudes.
func (a *Almanac) next(after time.Time, pick func(rise, set time.Time) time.Time) (time.Time, error) {
	day := after.UTC()
	for i := 0; i < 3; i++ {
		rise, set := sunrise.SunriseSunset(
			a.loc.Latitude, a.loc.Longitude,
			day.Year(), day.Month(), day.Day())
		if at := pick(rise, set); at.After(after) {
			return at, nil
		}
		day = day.AddDate(0, 0, 1)
	}
	return time.Time{}, ports.ErrUnavailable
}
