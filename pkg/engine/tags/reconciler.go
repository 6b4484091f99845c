// Package tags holds the provenance tag state machine. A resource is either
// unclaimed (none of the immutable provenance tags present) or claimed, and it
// crosses that line exactly once.
package tags

import (
	"sync"
	"time"

	// Container images for the listener often ship without zoneinfo; the
	// Pacific tag must not silently degrade there.
	_ "time/tzdata"
)

// Reserved provenance tag keys.
const (
	KeyCreator          = "Creator"
	KeyDateCreated      = "DateCreated"
	KeyTimeCreatedInPST = "TimeCreatedInPST"
	KeyLastModifiedBy   = "LastModifiedBy"
	KeyLastModifiedDate = "LastModifiedDate"
)

// Set is an unordered tag mapping. Keys outside the reserved five are foreign
// and never touched by the reconciler.
type Set map[string]string

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// immutable keys signal that the resource has already been claimed.
var immutableKeys = []string{KeyCreator, KeyDateCreated, KeyTimeCreatedInPST}

// Claimed reports whether the set carries any of the immutable provenance keys.
// Presence of even one is the sole claim signal; a resource manually stripped
// of all three is treated as new again.
func Claimed(current Set) bool {
	for _, k := range immutableKeys {
		if _, ok := current[k]; ok {
			return true
		}
	}
	return false
}

var pacific = sync.OnceValue(func() *time.Location {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		// Host without tzdata. Pin to standard time rather than guessing DST.
		return time.FixedZone("PST", -8*60*60)
	}
	return loc
})

// FormatDate renders the UTC calendar day as month/day/year without padding.
func FormatDate(now time.Time) string {
	return now.UTC().Format("1/2/2006")
}

// FormatPacific renders the wall-clock time in the US Pacific zone.
func FormatPacific(now time.Time) string {
	return now.In(pacific()).Format("03:04PM")
}

// Reconcile computes the merge patch for a qualifying event. The unclaimed
// branch is the only writer of the three immutable keys; the claimed branch
// refreshes the two mutable keys and nothing else, so stale re-reads can never
// overwrite provenance. firstClaim reports whether this patch claims the
// resource.
//
// Two racing invocations can both observe an unclaimed resource and both emit
// the full patch; the tag store has no merge precondition, so last write wins.
// Duplicate deliveries of the same event render identical values, which keeps
// the merge idempotent per key.
func Reconcile(current Set, actor string, now time.Time) (patch Set, firstClaim bool) {
	date := FormatDate(now)

	patch = Set{
		KeyLastModifiedBy:   actor,
		KeyLastModifiedDate: date,
	}
	if Claimed(current) {
		return patch, false
	}

	patch[KeyCreator] = actor
	patch[KeyDateCreated] = date
	patch[KeyTimeCreatedInPST] = FormatPacific(now)
	return patch, true
}
