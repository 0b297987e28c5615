package duckdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/openlift/ironstats/internal/domain/classes"
	"github.com/openlift/ironstats/internal/domain/model"
	"github.com/openlift/ironstats/internal/domain/scoring"
	"github.com/openlift/ironstats/pkg/logger"
)

// DOTS totals above this are data errors, not lifts.
const dotsOutlierCutoff = 700.0

// condSet accumulates WHERE clauses with positional arguments.
type condSet struct {
	exprs []string
	args  []any
}

func (c *condSet) add(expr string, args ...any) {
	c.exprs = append(c.exprs, expr)
	c.args = append(c.args, args...)
}

func (c *condSet) where() string {
	if len(c.exprs) == 0 {
		return "1 = 1"
	}
	return strings.Join(c.exprs, " AND ")
}

func liftColumn(l model.Lift) string {
	switch l {
	case model.LiftSquat:
		return "best3squat_kg"
	case model.LiftBench:
		return "best3bench_kg"
	case model.LiftDeadlift:
		return "best3deadlift_kg"
	default:
		return "total_kg"
	}
}

// sortColumn validates a leaderboard sort token before any SQL is built.
func sortColumn(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dots":
		return "dots", nil
	case "total":
		return "total_kg", nil
	case "squat":
		return "best3squat_kg", nil
	case "bench":
		return "best3bench_kg", nil
	case "deadlift":
		return "best3deadlift_kg", nil
	default:
		return "", model.NewKind("duckdb.sort_column", model.ErrUnknownLift)
	}
}

func isAllToken(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "all")
}

// addSex appends the sex constraint unless the "all" sentinel applies.
func (c *condSet) addSex(sex string) {
	if isAllToken(sex) {
		return
	}
	c.add("sex = ?", strings.ToUpper(strings.TrimSpace(sex)))
}

// addEquipment appends an OR-of-equality constraint over the list,
// skipped entirely for an empty list or the "all" sentinel.
func (c *condSet) addEquipment(eq []string) {
	vals := make([]string, 0, len(eq))
	for _, e := range eq {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.EqualFold(e, "all") {
			return
		}
		vals = append(vals, e)
	}
	if len(vals) == 0 {
		return
	}
	ph := strings.TrimSuffix(strings.Repeat("?,", len(vals)), ",")
	c.add("equipment IN ("+ph+")", toAny(vals)...)
}

// addWeightClass translates a weight-class token into an inline
// bodyweight range condition. When the sex is unconstrained the
// condition branches per sex, mirroring the per-sex bracket tables.
func (c *condSet) addWeightClass(token, sex string) {
	tok, ok := classes.ParseToken(token)
	if !ok {
		return
	}
	if !isAllToken(sex) {
		female := strings.EqualFold(strings.TrimSpace(sex), string(model.SexFemale))
		expr, args, ok := bracketCond(tok, female)
		if ok {
			c.add(expr, args...)
		}
		return
	}
	fExpr, fArgs, fOK := bracketCond(tok, true)
	mExpr, mArgs, mOK := bracketCond(tok, false)
	switch {
	case fOK && mOK:
		c.add("((sex = 'F' AND "+fExpr+") OR (sex <> 'F' AND "+mExpr+"))",
			append(fArgs, mArgs...)...)
	case fOK:
		c.add("(sex = 'F' AND "+fExpr+")", fArgs...)
	case mOK:
		c.add("(sex <> 'F' AND "+mExpr+")", mArgs...)
	}
}

func bracketCond(tok classes.Token, female bool) (string, []any, bool) {
	lo, hi, open, ok := classes.Bracket(tok.System, female, tok.Class)
	if !ok {
		return "", nil, false
	}
	if open {
		return "bodyweight_kg > ?", []any{lo}, true
	}
	return "bodyweight_kg > ? AND bodyweight_kg <= ?", []any{lo, hi}, true
}

// addFederation appends a case-normalized federation match; skipped when
// the file has no federation column.
func (e *Engine) addFederation(ctx context.Context, c *condSet, fed string) {
	if isAllToken(fed) {
		return
	}
	if !e.hasColumn("federation") {
		e.log.Warn(ctx, "federation filter requested but file has no federation column; skipping",
			logger.String("federation", fed))
		return
	}
	c.add("upper(federation) = ?", strings.ToUpper(strings.TrimSpace(fed)))
}

// addYear appends a calendar-year constraint; skipped when the file has
// no date column.
func (e *Engine) addYear(c *condSet, year int) {
	if year <= 0 || !e.hasColumn("date") {
		return
	}
	c.add("year(try_cast(date AS DATE)) = ?", year)
}

// totalScoreExpr is the total normalized-score expression: the
// precomputed dots column when the file carries it, otherwise the
// inline approximation.
func (e *Engine) totalScoreExpr() string {
	if e.hasColumn("dots") {
		return "dots"
	}
	return approxScoreExpr("total_kg", "", false)
}

// scoreExpr is the per-lift normalized-score expression used inside
// queries: dots for totals, the linear approximation for single lifts
// (there is no precomputed per-lift score column on disk).
func (e *Engine) scoreExpr(lift model.Lift, sex string) string {
	if lift == model.LiftTotal && e.hasColumn("dots") {
		return "dots"
	}
	return approxScoreExpr(liftColumn(lift), sex, !isAllToken(sex))
}

// approxScoreExpr inlines scoring.ApproxDots as SQL arithmetic. With an
// unconstrained sex the denominator branches per row.
func approxScoreExpr(valueExpr, sex string, sexConstrained bool) string {
	if sexConstrained {
		s := model.SexMale
		if strings.EqualFold(strings.TrimSpace(sex), string(model.SexFemale)) {
			s = model.SexFemale
		}
		a, b := scoring.ApproxCoefficients(s)
		return fmt.Sprintf("%s * 500 / (%g + %g * bodyweight_kg)", valueExpr, a, b)
	}
	fa, fb := scoring.ApproxCoefficients(model.SexFemale)
	ma, mb := scoring.ApproxCoefficients(model.SexMale)
	return fmt.Sprintf(
		"%s * 500 / (CASE WHEN sex = 'F' THEN %g + %g * bodyweight_kg ELSE %g + %g * bodyweight_kg END)",
		valueExpr, fa, fb, ma, mb)
}

func toAny[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
