// Package viz runs the visualization compute pass: histograms, scatter
// series, and percentile ranks over the filtered dataset.
package viz

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/openlift/ironstats/internal/domain/dataset"
	"github.com/openlift/ironstats/internal/domain/filter"
	"github.com/openlift/ironstats/internal/domain/model"
	"github.com/openlift/ironstats/internal/domain/scoring"
	"github.com/openlift/ironstats/internal/domain/stats"
	"github.com/openlift/ironstats/pkg/logger"
)

const defaultBinCount = 20

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithBinCount sets the histogram bin count.
func WithBinCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.binCount = n
		}
	}
}

// Engine is a pure function over the dataset and a request; any number
// of Compute calls may run concurrently.
type Engine struct {
	ds       *dataset.Dataset
	compiler *filter.Compiler
	binCount int
	log      logger.Logger
}

// NewEngine creates a visualization engine over ds.
func NewEngine(ds *dataset.Dataset, opts ...Option) *Engine {
	e := &Engine{
		ds:       ds,
		compiler: filter.NewCompiler(ds),
		binCount: defaultBinCount,
		log:      logger.Named("viz"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute applies the compiled filter and builds the full visualization
// result in a single materialization pass.
func (e *Engine) Compute(ctx context.Context, req model.FilterRequest) (model.VizResult, error) {
	start := time.Now()

	compiled, err := e.compiler.Compile(ctx, req)
	if err != nil {
		return model.VizResult{}, err
	}

	raw := e.ds.LiftColumn(compiled.Lift)
	score := e.ds.DotsColumn(compiled.Lift)

	// Column-pruned aggregate scan: only the row count under the
	// predicate, without materializing anything. Value extents come out
	// of the histogram pass over the materialized columns below.
	count := 0
	for i := 0; i < e.ds.Len(); i++ {
		if compiled.Pred(i) {
			count++
		}
	}

	// Materialize exactly once into parallel arrays, dropping rows
	// where a required value is non-finite or non-positive.
	bodyweights := make([]float64, 0, count)
	rawValues := make([]float64, 0, count)
	scoreValues := make([]float64, 0, count)
	sexes := make([]string, 0, count)
	for i := 0; i < e.ds.Len(); i++ {
		if !compiled.Pred(i) {
			continue
		}
		bw, rv, sv := e.ds.Bodyweight[i], raw[i], score[i]
		if !usable(bw) || !usable(rv) || !usable(sv) {
			continue
		}
		bodyweights = append(bodyweights, bw)
		rawValues = append(rawValues, rv)
		scoreValues = append(scoreValues, sv)
		sexes = append(sexes, e.ds.Sexes[i])
	}

	res := model.VizResult{
		RawHistogram:   toModelHist(stats.Histogram(rawValues, e.binCount), rawValues),
		ScoreHistogram: toModelHist(stats.Histogram(scoreValues, e.binCount), scoreValues),
		RawScatter:     scatter(bodyweights, rawValues, sexes),
		ScoreScatter:   scatter(bodyweights, scoreValues, sexes),
		RowCount:       len(rawValues),
	}

	if req.UserLift != nil {
		if p, ok := stats.PercentileRank(rawValues, *req.UserLift); ok {
			res.RawPercentile = &p
		}
		if req.UserBodyweight != nil {
			userScore := scoring.Dots(userSex(req), *req.UserBodyweight, *req.UserLift)
			if p, ok := stats.PercentileRank(scoreValues, userScore); ok {
				res.ScorePercentile = &p
			}
		}
	}

	res.ElapsedMS = float64(time.Since(start).Microseconds()) / 1e3
	e.log.Debug(ctx, "viz compute done",
		logger.String("lift", string(compiled.Lift)),
		logger.Int("rows", res.RowCount),
		logger.Float64("elapsed_ms", res.ElapsedMS))
	return res, nil
}

func usable(x float64) bool {
	return x > 0 && !math.IsInf(x, 0) && x == x
}

// userSex picks the scoring coefficient set for a caller-supplied lift.
// Sex tokens are case-insensitive, like everywhere else in the filter
// grammar. With no sex constraint the male coefficients apply, matching
// the comparison page's default cohort.
func userSex(req model.FilterRequest) model.Sex {
	if strings.EqualFold(strings.TrimSpace(req.Sex), string(model.SexFemale)) {
		return model.SexFemale
	}
	return model.SexMale
}

func toModelHist(h stats.Hist, values []float64) model.Histogram {
	return model.Histogram{
		Edges:  h.Edges,
		Counts: h.Counts,
		Values: values,
		Min:    h.Min,
		Max:    h.Max,
	}
}

func scatter(bw, vals []float64, sexes []string) []model.ScatterPoint {
	out := make([]model.ScatterPoint, len(vals))
	for i := range vals {
		out[i] = model.ScatterPoint{Bodyweight: bw[i], Value: vals[i], Sex: sexes[i]}
	}
	return out
}
