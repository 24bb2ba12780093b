package service

import (
	"fmt"
	"math"
	"time"

	"github.com/kjstillabower/forecast-cli/internal/models"
)

const (
	// DefaultMaxAge is how old the first cached record may be before a refetch.
	DefaultMaxAge = 24 * time.Hour
	// DefaultCoordThreshold is the per-axis drift in degrees tolerated before a refetch.
	DefaultCoordThreshold = 0.001
)

// coordScale sets the rounding of coordinate deltas to 1e-9 degrees. Decimal inputs
// such as 52.520 and 52.519 differ by slightly more than 0.001 in binary floating point.
const coordScale = 1e9

// Reason explains a freshness decision; it is also the metric label.
type Reason string

const (
	ReasonFresh    Reason = "fresh"
	ReasonMissing  Reason = "missing"
	ReasonAge      Reason = "age"
	ReasonLocation Reason = "location"
	ReasonForced   Reason = "forced"
)

// FreshnessDecision reports whether a cached document must be refetched.
type FreshnessDecision struct {
	Stale  bool
	Reason Reason
}

// Policy holds the staleness thresholds. Both comparisons are strict: a document
// exactly MaxAge old, or exactly CoordThreshold away, is still fresh.
type Policy struct {
	MaxAge         time.Duration
	CoordThreshold float64
	ForceRefresh   bool // always refetch, ignoring the cached document
}

// DefaultPolicy returns a one-day, 0.001 degree policy.
func DefaultPolicy() Policy {
	return Policy{MaxAge: DefaultMaxAge, CoordThreshold: DefaultCoordThreshold}
}

// Decide evaluates the cached document (found reports whether one exists) against the
// requested coordinates at time now. Age and location are checked independently;
// when both are stale the reason is age.
func (p Policy) Decide(doc models.ForecastDocument, found bool, requested models.Coordinates, now time.Time) (FreshnessDecision, error) {
	if p.ForceRefresh {
		return FreshnessDecision{Stale: true, Reason: ReasonForced}, nil
	}
	if !found {
		return FreshnessDecision{Stale: true, Reason: ReasonMissing}, nil
	}

	oldest, err := doc.OldestTimestamp()
	if err != nil {
		return FreshnessDecision{}, fmt.Errorf("evaluate cached forecast: %w", err)
	}
	if now.Sub(time.Unix(oldest, 0)) > p.MaxAge {
		return FreshnessDecision{Stale: true, Reason: ReasonAge}, nil
	}

	if drifted(requested.Lat, doc.Coordinates.Lat, p.CoordThreshold) ||
		drifted(requested.Lon, doc.Coordinates.Lon, p.CoordThreshold) {
		return FreshnessDecision{Stale: true, Reason: ReasonLocation}, nil
	}

	return FreshnessDecision{Stale: false, Reason: ReasonFresh}, nil
}

// drifted reports whether |a-b| exceeds threshold after rounding the delta to 1e-9,
// so drift up to threshold+5e-10 counts as within threshold.
func drifted(a, b, threshold float64) bool {
	d := math.Round(math.Abs(a-b)*coordScale) / coordScale
	return d > threshold
}
