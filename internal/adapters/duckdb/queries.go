package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/openlift/ironstats/internal/adapters/cache"
	"github.com/openlift/ironstats/internal/domain/model"
	"github.com/openlift/ironstats/internal/domain/scoring"
	"github.com/openlift/ironstats/pkg/metrics"
)

// Score quantiles reported per (sex, equipment) group.
var bandQuantiles = []float64{0.25, 0.50, 0.75, 0.90, 0.95, 0.99}

// PercentileBands computes score percentiles for every (sex, equipment)
// group over finite, positive, non-outlier totals.
func (e *Engine) PercentileBands(ctx context.Context) ([]model.PercentileBand, error) {
	key := "percentile_bands|all|fmt=" + cache.FormatJSON
	return cache.GetOrCompute(ctx, e.results, key, func(ctx context.Context) ([]model.PercentileBand, error) {
		start := time.Now()
		score := e.totalScoreExpr()
		q := fmt.Sprintf(`
			SELECT sex, equipment, COUNT(*) AS cnt,
			       quantile_cont(%[1]s, 0.25), quantile_cont(%[1]s, 0.50),
			       quantile_cont(%[1]s, 0.75), quantile_cont(%[1]s, 0.90),
			       quantile_cont(%[1]s, 0.95), quantile_cont(%[1]s, 0.99)
			FROM lifts
			WHERE %[1]s > 0 AND isfinite(%[1]s) AND %[1]s < ?
			GROUP BY sex, equipment
			ORDER BY sex, equipment`, score)

		var bands []model.PercentileBand
		err := e.scan(ctx, q, []any{dotsOutlierCutoff}, func(rows *sql.Rows) error {
			for rows.Next() {
				var b model.PercentileBand
				if err := rows.Scan(&b.Sex, &b.Equipment, &b.Count,
					&b.P25, &b.P50, &b.P75, &b.P90, &b.P95, &b.P99); err != nil {
					return fmt.Errorf("%w: %w", ErrQuery, err)
				}
				bands = append(bands, b)
			}
			return nil
		})
		if err != nil {
			metrics.RecordSQLQueryError()
			return nil, model.Wrap("duckdb.percentile_bands", err)
		}
		metrics.RecordSQLQueryLatency("percentile_bands", float64(time.Since(start).Microseconds())/1e3)
		return bands, nil
	})
}

// WeightDistribution partitions the population's observed range for one
// lift into binCount equal-width bins, reporting per-bin count and
// average normalized score. Empty bins report zero via the left join.
// A filter matching no rows at all yields a distribution with no bins,
// not an error: the extent aggregate produces NULL bounds then, and the
// bin CTE filters them out.
func (e *Engine) WeightDistribution(ctx context.Context, req model.FilterRequest, binCount int) (model.WeightDistribution, error) {
	lift, err := model.ParseLift(req.Lift)
	if err != nil {
		metrics.RecordValidationError()
		return model.WeightDistribution{}, err
	}
	if binCount < 1 {
		binCount = 10
	}

	key := cache.Key(fmt.Sprintf("weight_distribution:%d", binCount), req, cache.FormatJSON)
	return cache.GetOrCompute(ctx, e.results, key, func(ctx context.Context) (model.WeightDistribution, error) {
		start := time.Now()
		col := liftColumn(lift)
		score := e.scoreExpr(lift, req.Sex)

		var c condSet
		c.addSex(req.Sex)
		c.addEquipment(req.Equipment)
		c.addWeightClass(req.WeightClass, req.Sex)
		c.add(col+" > 0 AND isfinite("+col+")")

		q := fmt.Sprintf(`
			WITH pop AS (
				SELECT %s AS v, %s AS s FROM lifts WHERE %s
			), ext AS (
				SELECT MIN(v) AS lo, MAX(v) AS hi FROM pop
			), bins AS (
				SELECT t.range AS i,
				       e.lo + (e.hi - e.lo) * t.range / %[4]d AS lower,
				       e.lo + (e.hi - e.lo) * (t.range + 1) / %[4]d AS upper
				FROM ext e, range(%[4]d) t
				WHERE e.lo IS NOT NULL
			)
			SELECT b.i, b.lower, b.upper,
			       COUNT(p.v) AS cnt,
			       COALESCE(AVG(p.s), 0) AS avg_score
			FROM bins b
			LEFT JOIN pop p
			  ON p.v >= b.lower AND (p.v < b.upper OR (b.i = %[4]d - 1 AND p.v <= b.upper))
			GROUP BY b.i, b.lower, b.upper
			ORDER BY b.i`, col, score, c.where(), binCount)

		dist := model.WeightDistribution{Lift: lift}
		err := e.scan(ctx, q, c.args, func(rows *sql.Rows) error {
			for rows.Next() {
				var i int64
				var bin model.WeightBin
				if err := rows.Scan(&i, &bin.Lower, &bin.Upper, &bin.Count, &bin.AvgScore); err != nil {
					return fmt.Errorf("%w: %w", ErrQuery, err)
				}
				dist.Bins = append(dist.Bins, bin)
			}
			return nil
		})
		if err != nil {
			metrics.RecordSQLQueryError()
			return model.WeightDistribution{}, model.Wrap("duckdb.weight_distribution", err)
		}
		if n := len(dist.Bins); n > 0 {
			dist.Min = dist.Bins[0].Lower
			dist.Max = dist.Bins[n-1].Upper
		}
		metrics.RecordSQLQueryLatency("weight_distribution", float64(time.Since(start).Microseconds())/1e3)
		return dist, nil
	})
}

// CompetitivePosition places a hypothetical lift within the filtered
// population: competitors strictly below, total, percentile, rank, and
// an estimated score via the simplified approximation.
func (e *Engine) CompetitivePosition(ctx context.Context, req model.FilterRequest) (model.CompetitivePosition, error) {
	lift, err := model.ParseLift(req.Lift)
	if err != nil {
		metrics.RecordValidationError()
		return model.CompetitivePosition{}, err
	}
	if req.UserLift == nil {
		metrics.RecordValidationError()
		return model.CompetitivePosition{}, model.NewKind("duckdb.competitive_position", model.ErrInvalidRequest)
	}

	key := cache.Key("competitive_position", req, cache.FormatJSON)
	return cache.GetOrCompute(ctx, e.results, key, func(ctx context.Context) (model.CompetitivePosition, error) {
		start := time.Now()
		col := liftColumn(lift)

		var c condSet
		c.addSex(req.Sex)
		c.addEquipment(req.Equipment)
		c.addWeightClass(req.WeightClass, req.Sex)
		c.add(col + " > 0 AND isfinite(" + col + ")")

		q := fmt.Sprintf(`
			SELECT COUNT(*) FILTER (WHERE v < ?) AS below, COUNT(*) AS total
			FROM (SELECT %s AS v FROM lifts WHERE %s) t`, col, c.where())
		args := append([]any{*req.UserLift}, c.args...)

		var pos model.CompetitivePosition
		err := e.scan(ctx, q, args, func(rows *sql.Rows) error {
			if rows.Next() {
				if err := rows.Scan(&pos.Below, &pos.Total); err != nil {
					return fmt.Errorf("%w: %w", ErrQuery, err)
				}
			}
			return nil
		})
		if err != nil {
			metrics.RecordSQLQueryError()
			return model.CompetitivePosition{}, model.Wrap("duckdb.competitive_position", err)
		}

		denom := pos.Total
		if denom < 1 {
			denom = 1
		}
		pos.Percentile = 100 * float64(pos.Below) / float64(denom)
		pos.Rank = pos.Below + 1
		if req.UserBodyweight != nil {
			sex := model.SexMale
			if strings.EqualFold(strings.TrimSpace(req.Sex), string(model.SexFemale)) {
				sex = model.SexFemale
			}
			pos.EstimatedScore = scoring.ApproxDots(sex, *req.UserBodyweight, *req.UserLift)
		}
		metrics.RecordSQLQueryLatency("competitive_position", float64(time.Since(start).Microseconds())/1e3)
		return pos, nil
	})
}

// Leaderboard returns one page of the full-dataset ranking. Ranks come
// from a row-number window with a deterministic name tiebreak, and the
// total row count from a windowed COUNT, so the page and its pagination
// metadata come out of a single query.
func (e *Engine) Leaderboard(ctx context.Context, req model.LeaderboardRequest) (model.LeaderboardPage, error) {
	sortCol, err := sortColumn(req.SortBy)
	if err != nil {
		metrics.RecordValidationError()
		return model.LeaderboardPage{}, err
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > e.maxPageSize {
		pageSize = e.maxPageSize
	}
	norm := req
	norm.Page, norm.PageSize = page, pageSize

	key := "leaderboard|" + norm.Canonical() + "|fmt=" + cache.FormatJSON
	return cache.GetOrCompute(ctx, e.results, key, func(ctx context.Context) (model.LeaderboardPage, error) {
		start := time.Now()

		var c condSet
		c.addSex(norm.Sex)
		c.addEquipment(norm.Equipment)
		c.addWeightClass(norm.WeightClass, norm.Sex)
		e.addFederation(ctx, &c, norm.Federation)
		e.addYear(&c, norm.Year)
		c.add("total_kg > 0")

		fedExpr := "''"
		if e.hasColumn("federation") {
			fedExpr = "COALESCE(federation, '')"
		}
		yearExpr := "0"
		if e.hasColumn("date") {
			yearExpr = "COALESCE(year(try_cast(date AS DATE)), 0)"
		}
		orderExpr := sortCol
		if orderExpr == "dots" {
			// Older file conversions lack the dots column; the score
			// expression degrades to the inline approximation.
			orderExpr = e.totalScoreExpr()
		}

		q := fmt.Sprintf(`
			SELECT name, sex, equipment, bodyweight_kg,
			       best3squat_kg, best3bench_kg, best3deadlift_kg, total_kg,
			       %s AS score, %s AS federation, %s AS year,
			       ROW_NUMBER() OVER (ORDER BY %s DESC, name ASC) AS rnk,
			       COUNT(*) OVER () AS total_count
			FROM lifts
			WHERE %s
			ORDER BY rnk
			LIMIT ? OFFSET ?`,
			e.totalScoreExpr(), fedExpr, yearExpr, orderExpr, c.where())
		args := append(c.args, pageSize, (page-1)*pageSize)

		out := model.LeaderboardPage{Page: page, PageSize: pageSize}
		err := e.scan(ctx, q, args, func(rows *sql.Rows) error {
			for rows.Next() {
				var le model.LeaderboardEntry
				if err := rows.Scan(&le.Name, &le.Sex, &le.Equipment, &le.Bodyweight,
					&le.Squat, &le.Bench, &le.Deadlift, &le.Total,
					&le.Dots, &le.Federation, &le.Year,
					&le.Rank, &out.TotalCount); err != nil {
					return fmt.Errorf("%w: %w", ErrQuery, err)
				}
				out.Entries = append(out.Entries, le)
			}
			return nil
		})
		if err != nil {
			metrics.RecordSQLQueryError()
			return model.LeaderboardPage{}, model.Wrap("duckdb.leaderboard", err)
		}
		if out.TotalCount > 0 {
			out.TotalPages = int((out.TotalCount + int64(pageSize) - 1) / int64(pageSize))
		}
		metrics.RecordSQLQueryLatency("leaderboard", float64(time.Since(start).Microseconds())/1e3)
		return out, nil
	})
}
