// Package recognition turns a probe embedding and a roster snapshot into an
// identity decision.
package recognition

import (
	"errors"
	"fmt"
)

// DefaultThreshold is the maximum embedding distance accepted as a positive
// identity match.
const DefaultThreshold = 0.6

// Candidate is one roster entry visible to the matcher.
type Candidate struct {
	StudentID  string
	Name       string
	RollNumber string
	Embedding  []float32
}

// Match is a positive identity decision.
type Match struct {
	StudentID  string
	Name       string
	RollNumber string
	Distance   float64
}

// ErrEmptyRoster is returned when there are no enrolled students to match
// against.
var ErrEmptyRoster = errors.New("no students enrolled")

// NoMatchError reports that no roster entry was close enough, carrying the
// closest rejected candidate for diagnostic messaging.
type NoMatchError struct {
	BestStudentID string
	BestName      string
	BestDistance  float64
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no match found; closest was %s at distance %.3f", e.BestName, e.BestDistance)
}

// Matcher is a stateless decision function over a roster snapshot.
type Matcher struct {
	// Threshold is the maximum accepted distance (exclusive).
	Threshold float64

	// FirstHit enables the early-exit fast path: the first candidate under
	// the threshold wins, making the outcome depend on roster order. Off by
	// default; the default decision is the global minimum.
	FirstHit bool
}

// NewMatcher creates a matcher with the given threshold, falling back to
// DefaultThreshold when it is not positive.
func NewMatcher(threshold float64) Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Matcher{Threshold: threshold}
}

// Match compares the probe against every candidate and selects the global
// minimum distance, breaking ties on the lowest student id so the outcome
// never depends on roster enumeration order. Returns a Match when the
// minimum is strictly below the threshold, a NoMatchError carrying the
// closest rejected candidate otherwise, and ErrEmptyRoster for an empty
// snapshot.
func (m Matcher) Match(probe []float32, roster []Candidate) (*Match, error) {
	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}

	best := -1
	bestDistance := 0.0
	for i := range roster {
		d := EuclideanDistance(probe, roster[i].Embedding)
		if m.FirstHit && d < m.Threshold {
			return &Match{
				StudentID:  roster[i].StudentID,
				Name:       roster[i].Name,
				RollNumber: roster[i].RollNumber,
				Distance:   d,
			}, nil
		}
		if best == -1 || d < bestDistance ||
			(d == bestDistance && roster[i].StudentID < roster[best].StudentID) {
			best = i
			bestDistance = d
		}
	}

	if bestDistance < m.Threshold {
		return &Match{
			StudentID:  roster[best].StudentID,
			Name:       roster[best].Name,
			RollNumber: roster[best].RollNumber,
			Distance:   bestDistance,
		}, nil
	}

	return nil, &NoMatchError{
		BestStudentID: roster[best].StudentID,
		BestName:      roster[best].Name,
		BestDistance:  bestDistance,
	}
}
