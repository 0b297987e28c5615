package model

// Histogram is a fixed-width binning of one value column. Edges has one
// more element than Counts; Values carries the raw inputs so callers can
// re-bin client-side without another round trip.
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []int     `json:"counts"`
	Values []float64 `json:"values"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
}

// ScatterPoint pairs a bodyweight with a lift (or score) value.
type ScatterPoint struct {
	Bodyweight float64 `json:"bodyweight"`
	Value      float64 `json:"value"`
	Sex        string  `json:"sex"`
}

// VizResult is the output of one visualization compute pass.
type VizResult struct {
	RawHistogram   Histogram      `json:"raw_histogram"`
	ScoreHistogram Histogram      `json:"score_histogram"`
	RawScatter     []ScatterPoint `json:"raw_scatter"`
	ScoreScatter   []ScatterPoint `json:"score_scatter"`

	// Percentile ranks for the caller-supplied values; nil when no user
	// value was supplied or the filtered population is empty.
	RawPercentile   *float64 `json:"raw_percentile,omitempty"`
	ScorePercentile *float64 `json:"score_percentile,omitempty"`

	RowCount  int     `json:"row_count"`
	ElapsedMS float64 `json:"elapsed_ms"`
}

// PercentileBand holds the score percentiles of one (sex, equipment) group.
type PercentileBand struct {
	Sex       string  `json:"sex"`
	Equipment string  `json:"equipment"`
	Count     int64   `json:"count"`
	P25       float64 `json:"p25"`
	P50       float64 `json:"p50"`
	P75       float64 `json:"p75"`
	P90       float64 `json:"p90"`
	P95       float64 `json:"p95"`
	P99       float64 `json:"p99"`
}

// WeightBin is one bucket of a weight-distribution query. Empty buckets
// report zero count rather than being absent.
type WeightBin struct {
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
	Count    int64   `json:"count"`
	AvgScore float64 `json:"avg_score"`
}

// WeightDistribution is the dynamic-width histogram computed by the SQL
// engine for one lift.
type WeightDistribution struct {
	Lift Lift        `json:"lift"`
	Min  float64     `json:"min"`
	Max  float64     `json:"max"`
	Bins []WeightBin `json:"bins"`
}

// CompetitivePosition places a hypothetical lift inside the filtered
// population.
type CompetitivePosition struct {
	Percentile     float64 `json:"percentile"`
	Rank           int64   `json:"rank"`
	Below          int64   `json:"below"`
	Total          int64   `json:"total"`
	EstimatedScore float64 `json:"estimated_score"`
}

// LeaderboardEntry is one ranked row of the full-dataset leaderboard.
type LeaderboardEntry struct {
	Rank       int64   `json:"rank"`
	Name       string  `json:"name"`
	Sex        string  `json:"sex"`
	Equipment  string  `json:"equipment"`
	Bodyweight float64 `json:"bodyweight_kg"`
	Squat      float64 `json:"squat_kg"`
	Bench      float64 `json:"bench_kg"`
	Deadlift   float64 `json:"deadlift_kg"`
	Total      float64 `json:"total_kg"`
	Dots       float64 `json:"dots"`
	Federation string  `json:"federation,omitempty"`
	Year       int     `json:"year,omitempty"`
}

// LeaderboardPage is one page of ranked entries plus pagination metadata.
type LeaderboardPage struct {
	Entries    []LeaderboardEntry `json:"entries"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalCount int64              `json:"total_count"`
	TotalPages int                `json:"total_pages"`
}
