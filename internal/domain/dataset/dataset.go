// Package dataset holds the immutable, column-oriented competition
// table. It is loaded once at startup and referenced, never copied, by
// every concurrent request; replacing the data means building a new
// Dataset, not patching this one.
package dataset

import (
	"github.com/openlift/ironstats/internal/domain/classes"
	"github.com/openlift/ironstats/internal/domain/model"
)

// Dataset is a struct-of-arrays view of the competition table. All
// slices share one length; derived columns (weight classes, DOTS) are
// filled at load time and never recomputed per request.
type Dataset struct {
	Names      []string
	Sexes      []string
	Equipment  []string
	Bodyweight []float64

	Squat    []float64
	Bench    []float64
	Deadlift []float64
	Total    []float64

	SquatDots    []float64
	BenchDots    []float64
	DeadliftDots []float64
	TotalDots    []float64

	ClassIPF  []string
	ClassPara []string
	ClassWP   []string

	// Federation is empty (zero length) when the source file lacks the
	// column; filters on it then degrade to a logged no-op.
	Federation []string

	// DateUnix holds meet dates as unix seconds, zero when unknown.
	DateUnix []int64

	path string
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Bodyweight) }

// Path returns the resolved on-disk file the dataset was loaded from.
// The SQL engine reads the same file.
func (d *Dataset) Path() string { return d.path }

// HasFederation reports whether the federation column was present.
func (d *Dataset) HasFederation() bool { return len(d.Federation) == d.Len() && d.Len() > 0 }

// LiftColumn returns the raw-value column for a lift.
func (d *Dataset) LiftColumn(l model.Lift) []float64 {
	switch l {
	case model.LiftSquat:
		return d.Squat
	case model.LiftBench:
		return d.Bench
	case model.LiftDeadlift:
		return d.Deadlift
	default:
		return d.Total
	}
}

// DotsColumn returns the normalized-score column for a lift.
func (d *Dataset) DotsColumn(l model.Lift) []float64 {
	switch l {
	case model.LiftSquat:
		return d.SquatDots
	case model.LiftBench:
		return d.BenchDots
	case model.LiftDeadlift:
		return d.DeadliftDots
	default:
		return d.TotalDots
	}
}

// ClassColumn returns the weight-class label column for one system.
func (d *Dataset) ClassColumn(system classes.System) []string {
	switch system {
	case classes.SystemPara:
		return d.ClassPara
	case classes.SystemWP:
		return d.ClassWP
	default:
		return d.ClassIPF
	}
}
