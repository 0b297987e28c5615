// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"strings"
	"time"
)

// Sex is the binary competition category, with an "all" sentinel for
// unconstrained filters.
type Sex string

// Sex values as stored in the dataset.
const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
	SexAll    Sex = "all"
)

// Lift identifies one of the three competition lifts or the combined total.
type Lift string

// Lift values.
const (
	LiftSquat    Lift = "squat"
	LiftBench    Lift = "bench"
	LiftDeadlift Lift = "deadlift"
	LiftTotal    Lift = "total"
)

// ParseLift validates a lift token. Unknown tokens fail with
// ErrUnknownLift before any engine work begins.
func ParseLift(s string) (Lift, error) {
	switch Lift(strings.ToLower(strings.TrimSpace(s))) {
	case LiftSquat:
		return LiftSquat, nil
	case LiftBench:
		return LiftBench, nil
	case LiftDeadlift:
		return LiftDeadlift, nil
	case LiftTotal, "":
		// Empty defaults to total, the most common comparison basis.
		return LiftTotal, nil
	default:
		return "", NewKind("model.parse_lift", ErrUnknownLift)
	}
}

// Record is one row of the competition dataset: a competitor's best
// attempts at a single meet, plus columns derived once at load time.
type Record struct {
	Name       string
	Sex        string
	Equipment  string
	Bodyweight float64
	Squat      float64
	Bench      float64
	Deadlift   float64
	Total      float64
	Dots       float64
	Federation string
	Date       time.Time
}

// FilterRequest carries the optional constraints of one analytical
// question. A zero field means "no constraint on this dimension".
type FilterRequest struct {
	Sex            string   `json:"sex,omitempty"`
	Equipment      []string `json:"equipment,omitempty"`
	WeightClass    string   `json:"weight_class,omitempty"`
	BodyweightMin  *float64 `json:"bodyweight_min,omitempty"`
	BodyweightMax  *float64 `json:"bodyweight_max,omitempty"`
	Lift           string   `json:"lift,omitempty"`
	TimeWindow     string   `json:"time_window,omitempty"`
	Federation     string   `json:"federation,omitempty"`
	UserLift       *float64 `json:"user_lift,omitempty"`
	UserBodyweight *float64 `json:"user_bodyweight,omitempty"`
}

// Canonical returns a stable string encoding of every field, used as
// the base of cache keys. Two requests with equal field values always
// produce the same string.
func (r FilterRequest) Canonical() string {
	var b strings.Builder
	b.WriteString("sex=")
	b.WriteString(strings.ToLower(r.Sex))
	b.WriteString("|eq=")
	b.WriteString(strings.ToLower(strings.Join(r.Equipment, ",")))
	b.WriteString("|wc=")
	b.WriteString(strings.ToLower(r.WeightClass))
	b.WriteString("|bw=")
	writeOptFloat(&b, r.BodyweightMin)
	b.WriteString(":")
	writeOptFloat(&b, r.BodyweightMax)
	b.WriteString("|lift=")
	b.WriteString(strings.ToLower(r.Lift))
	b.WriteString("|tw=")
	b.WriteString(strings.ToLower(r.TimeWindow))
	b.WriteString("|fed=")
	b.WriteString(strings.ToUpper(r.Federation))
	b.WriteString("|user=")
	writeOptFloat(&b, r.UserLift)
	b.WriteString("@")
	writeOptFloat(&b, r.UserBodyweight)
	return b.String()
}

// LeaderboardRequest parameterizes the full-dataset leaderboard query.
type LeaderboardRequest struct {
	// SortBy is one of "dots", "total", "squat", "bench", "deadlift";
	// empty means dots.
	SortBy      string   `json:"sort_by,omitempty"`
	Sex         string   `json:"sex,omitempty"`
	Equipment   []string `json:"equipment,omitempty"`
	WeightClass string   `json:"weight_class,omitempty"`
	Federation  string   `json:"federation,omitempty"`
	Year        int      `json:"year,omitempty"`
	Page        int      `json:"page,omitempty"`
	PageSize    int      `json:"page_size,omitempty"`
}

// Canonical returns a stable string encoding of every field, used as
// the base of cache keys.
func (r LeaderboardRequest) Canonical() string {
	var b strings.Builder
	b.WriteString("sort=")
	b.WriteString(strings.ToLower(r.SortBy))
	b.WriteString("|sex=")
	b.WriteString(strings.ToLower(r.Sex))
	b.WriteString("|eq=")
	b.WriteString(strings.ToLower(strings.Join(r.Equipment, ",")))
	b.WriteString("|wc=")
	b.WriteString(strings.ToLower(r.WeightClass))
	b.WriteString("|fed=")
	b.WriteString(strings.ToUpper(r.Federation))
	b.WriteString("|year=")
	b.WriteString(strconv.Itoa(r.Year))
	b.WriteString("|page=")
	b.WriteString(strconv.Itoa(r.Page))
	b.WriteString("@")
	b.WriteString(strconv.Itoa(r.PageSize))
	return b.String()
}

func writeOptFloat(b *strings.Builder, v *float64) {
	if v == nil {
		b.WriteString("-")
		return
	}
	b.WriteString(strconv.FormatFloat(*v, 'f', -1, 64))
}
