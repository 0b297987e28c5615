// Package filter compiles a FilterRequest into a composed row predicate
// plus the minimal column projection the request needs.
package filter

import (
	"context"
	"strings"
	"time"

	"github.com/openlift/ironstats/internal/domain/classes"
	"github.com/openlift/ironstats/internal/domain/dataset"
	"github.com/openlift/ironstats/internal/domain/model"
	"github.com/openlift/ironstats/pkg/logger"
)

// Predicate reports whether row i of the dataset passes the filter.
type Predicate func(i int) bool

// Column names a projected dataset column.
type Column string

// Projection columns.
const (
	ColBodyweight Column = "bodyweight"
	ColSex        Column = "sex"
	ColRaw        Column = "raw"
	ColScore      Column = "score"
	ColEquipment  Column = "equipment"
	ColClass      Column = "weight_class"
	ColDate       Column = "date"
	ColFederation Column = "federation"
)

// Projection is the set of columns a compiled filter touches. Its point
// is to keep materialization narrow: columns outside it never need to
// be read for this request.
type Projection []Column

// Compiled is the output of one Compile call.
type Compiled struct {
	Pred       Predicate
	Projection Projection
	Lift       model.Lift
}

// Plausible human bodyweight bounds for the baseline validity predicate.
const (
	minPlausibleBodyweight = 25.0
	maxPlausibleBodyweight = 300.0
)

// Compiler builds predicates over one dataset. The baseline validity
// predicate is constructed once here, not per request.
type Compiler struct {
	ds       *dataset.Dataset
	baseline Predicate
	log      logger.Logger
}

// NewCompiler creates a compiler bound to ds.
func NewCompiler(ds *dataset.Dataset) *Compiler {
	return &Compiler{
		ds:       ds,
		baseline: baselinePredicate(ds),
		log:      logger.Named("filter"),
	}
}

// baselinePredicate accepts rows with a plausible bodyweight, strictly
// positive lifts and total, and finite positive normalized scores.
func baselinePredicate(ds *dataset.Dataset) Predicate {
	return func(i int) bool {
		bw := ds.Bodyweight[i]
		if bw < minPlausibleBodyweight || bw > maxPlausibleBodyweight {
			return false
		}
		if ds.Squat[i] <= 0 || ds.Bench[i] <= 0 || ds.Deadlift[i] <= 0 || ds.Total[i] <= 0 {
			return false
		}
		return finitePositive(ds.SquatDots[i]) &&
			finitePositive(ds.BenchDots[i]) &&
			finitePositive(ds.DeadliftDots[i]) &&
			finitePositive(ds.TotalDots[i])
	}
}

func finitePositive(x float64) bool {
	// NaN fails the > comparison; +Inf fails the upper bound.
	return x > 0 && x < 1e9
}

// Compile turns req into a predicate and projection. The only
// synchronous rejection is an unrecognized lift token; every other
// field either constrains rows or is ignored.
func (c *Compiler) Compile(ctx context.Context, req model.FilterRequest) (Compiled, error) {
	lift, err := model.ParseLift(req.Lift)
	if err != nil {
		return Compiled{}, err
	}

	proj := Projection{ColBodyweight, ColSex, ColRaw, ColScore}
	preds := make([]Predicate, 0, 8)
	ds := c.ds

	if sex := strings.ToUpper(strings.TrimSpace(req.Sex)); sex != "" && !isAll(req.Sex) {
		preds = append(preds, func(i int) bool { return ds.Sexes[i] == sex })
	}

	if eq := normalizeEquipment(req.Equipment); len(eq) > 0 {
		proj = append(proj, ColEquipment)
		preds = append(preds, func(i int) bool {
			for _, e := range eq {
				if strings.EqualFold(ds.Equipment[i], e) {
					return true
				}
			}
			return false
		})
	}

	if tok, ok := classes.ParseToken(req.WeightClass); ok {
		proj = append(proj, ColClass)
		col := ds.ClassColumn(tok.System)
		preds = append(preds, func(i int) bool { return col[i] == tok.Class })
	}

	if req.BodyweightMin != nil {
		lo := *req.BodyweightMin
		preds = append(preds, func(i int) bool { return ds.Bodyweight[i] >= lo })
	}
	if req.BodyweightMax != nil {
		hi := *req.BodyweightMax
		preds = append(preds, func(i int) bool { return ds.Bodyweight[i] <= hi })
	}

	if w := ParseWindow(req.TimeWindow); w != WindowAll {
		if from, to, ok := w.Range(time.Now()); ok {
			proj = append(proj, ColDate)
			preds = append(preds, func(i int) bool {
				t := ds.DateUnix[i]
				return t >= from && t <= to
			})
		}
	}

	if fed := strings.ToUpper(strings.TrimSpace(req.Federation)); fed != "" && !isAll(req.Federation) {
		if ds.HasFederation() {
			proj = append(proj, ColFederation)
			preds = append(preds, func(i int) bool { return ds.Federation[i] == fed })
		} else {
			// Degraded, not fatal: the dataset simply has no federation
			// column to match against.
			c.log.Warn(ctx, "federation filter requested but dataset has no federation column; skipping",
				logger.String("federation", fed))
		}
	}

	// Baseline validity runs last: the cheap user filters prune most
	// rows before the multi-column validity check.
	baseline := c.baseline
	pred := func(i int) bool {
		for _, p := range preds {
			if !p(i) {
				return false
			}
		}
		return baseline(i)
	}

	return Compiled{Pred: pred, Projection: proj, Lift: lift}, nil
}

func isAll(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "all")
}

// normalizeEquipment drops the filter entirely when the list is empty or
// carries the "all" sentinel.
func normalizeEquipment(eq []string) []string {
	out := make([]string, 0, len(eq))
	for _, e := range eq {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.EqualFold(e, "all") {
			return nil
		}
		out = append(out, e)
	}
	return out
}
