package spatial

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ringsaturn/tzf"
)

// ErrTimezoneNotFound is returned when no IANA zone covers a coordinate,
// e.g. open ocean. Callers must not fall back to UTC.
var ErrTimezoneNotFound = errors.New("no timezone found for coordinate")

// LocalTimeLayout is the wall-clock format used for reconstructed timestamps
const LocalTimeLayout = "02/01/2006 15:04:05"

var (
	finderOnce sync.Once
	finder     tzf.F
	finderErr  error
)

func timezoneFinder() (tzf.F, error) {
	finderOnce.Do(func() {
		finder, finderErr = tzf.NewDefaultFinder()
	})
	return finder, finderErr
}

// LocationFor resolves the IANA time zone covering a geographic point
func LocationFor(lon, lat float64) (*time.Location, error) {
	f, err := timezoneFinder()
	if err != nil {
		return nil, fmt.Errorf("failed to init timezone finder: %w", err)
	}

	name := f.GetTimezoneName(lon, lat)
	if name == "" {
		return nil, ErrTimezoneNotFound
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load location %s: %w", name, err)
	}
	return loc, nil
}

// ResolveLocalTime converts an epoch timestamp to the wall-clock time of the
// zone covering (lon, lat), formatted as DD/MM/YYYY HH:MM:SS
func ResolveLocalTime(lon, lat float64, epochSeconds int64) (string, error) {
	loc, err := LocationFor(lon, lat)
	if err != nil {
		return "", err
	}
	return time.Unix(epochSeconds, 0).In(loc).Format(LocalTimeLayout), nil
}
