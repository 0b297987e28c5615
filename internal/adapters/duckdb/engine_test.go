package duckdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlift/ironstats/internal/domain/model"
	"github.com/openlift/ironstats/internal/domain/scoring"
)

// fileRow mirrors the on-disk schema for building test fixtures.
type fileRow struct {
	Name       string  `parquet:"name"`
	Sex        string  `parquet:"sex"`
	Equipment  string  `parquet:"equipment"`
	Bodyweight float64 `parquet:"bodyweight_kg"`
	Squat      float64 `parquet:"best3squat_kg"`
	Bench      float64 `parquet:"best3bench_kg"`
	Deadlift   float64 `parquet:"best3deadlift_kg"`
	Total      float64 `parquet:"total_kg"`
	Dots       float64 `parquet:"dots"`
	Federation string  `parquet:"federation"`
	Date       string  `parquet:"date"`
}

func writeFixture(t *testing.T, rows []fileRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lifts.parquet")
	require.NoError(t, parquet.WriteFile(path, rows))
	return path
}

func fixtureRows() []fileRow {
	return []fileRow{
		{"ann", "F", "Raw", 62.5, 120, 70, 150, 340, 367, "IPF", "2025-03-01"},
		{"bea", "F", "Raw", 68.0, 140, 85, 170, 395, 401, "USAPL", "2024-06-15"},
		{"bob", "M", "Raw", 92.0, 250, 160, 280, 690, 441, "IPF", "2025-01-20"},
		{"cal", "M", "Raw", 105.5, 300, 200, 320, 820, 489, "WRPF", "2023-11-02"},
		{"dan", "M", "Wraps", 83.0, 240, 150, 270, 660, 446, "IPF", "2025-05-10"},
		{"eli", "M", "Raw", 74.0, 200, 130, 230, 560, 409, "USAPL", "2024-02-28"},
	}
}

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	path := writeFixture(t, fixtureRows())
	e, err := New(context.Background(), path, WithThreads(1), WithMaxPageSize(500))
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestEngineOpensAndDetectsColumns(t *testing.T) {
	e := openTestEngine(t)

	assert.True(t, e.hasColumn("dots"))
	assert.True(t, e.hasColumn("federation"))
	assert.True(t, e.hasColumn("date"))
	assert.False(t, e.hasColumn("wilks"))
}

func TestPercentileBandsLive(t *testing.T) {
	e := openTestEngine(t)

	bands, err := e.PercentileBands(context.Background())
	require.NoError(t, err)

	// Groups: (F, Raw), (M, Raw), (M, Wraps) in order.
	require.Len(t, bands, 3)
	assert.Equal(t, "F", bands[0].Sex)
	assert.Equal(t, int64(2), bands[0].Count)
	assert.Equal(t, "M", bands[1].Sex)
	assert.Equal(t, "Raw", bands[1].Equipment)
	assert.Equal(t, int64(3), bands[1].Count)

	for _, b := range bands {
		assert.LessOrEqual(t, b.P25, b.P50)
		assert.LessOrEqual(t, b.P50, b.P75)
		assert.LessOrEqual(t, b.P75, b.P99)
	}
}

func TestWeightDistributionLive(t *testing.T) {
	e := openTestEngine(t)

	dist, err := e.WeightDistribution(context.Background(), model.FilterRequest{Sex: "M"}, 4)
	require.NoError(t, err)
	require.Len(t, dist.Bins, 4)

	// Totals for men run 560..820; every one lands in exactly one bin.
	assert.Equal(t, 560.0, dist.Min)
	assert.Equal(t, 820.0, dist.Max)
	total := int64(0)
	for _, b := range dist.Bins {
		assert.LessOrEqual(t, b.Lower, b.Upper)
		total += b.Count
	}
	assert.Equal(t, int64(4), total)

	_, err = e.WeightDistribution(context.Background(), model.FilterRequest{Lift: "press"}, 4)
	assert.True(t, errors.Is(err, model.ErrUnknownLift))
}

func TestWeightDistributionEmptyCohortLive(t *testing.T) {
	e := openTestEngine(t)

	// No row in the fixture lifts in Multi-ply. A valid filter matching
	// nothing yields an empty distribution, not an engine error.
	dist, err := e.WeightDistribution(context.Background(), model.FilterRequest{
		Equipment: []string{"Multi-ply"},
	}, 4)
	require.NoError(t, err)
	assert.Empty(t, dist.Bins)
	assert.Zero(t, dist.Min)
	assert.Zero(t, dist.Max)
	assert.Equal(t, model.LiftTotal, dist.Lift)
}

func TestCompetitivePositionLive(t *testing.T) {
	e := openTestEngine(t)
	lift, bw := 700.0, 90.0

	pos, err := e.CompetitivePosition(context.Background(), model.FilterRequest{
		Sex: "M", UserLift: &lift, UserBodyweight: &bw,
	})
	require.NoError(t, err)

	// 700 beats 560, 660 and 690 out of 4 male totals.
	assert.Equal(t, int64(3), pos.Below)
	assert.Equal(t, int64(4), pos.Total)
	assert.Equal(t, int64(4), pos.Rank)
	assert.InDelta(t, 75.0, pos.Percentile, 1e-9)
	assert.Greater(t, pos.EstimatedScore, 0.0)

	_, err = e.CompetitivePosition(context.Background(), model.FilterRequest{Sex: "M"})
	assert.True(t, errors.Is(err, model.ErrInvalidRequest))
}

func TestCompetitivePositionSexCaseLive(t *testing.T) {
	e := openTestEngine(t)
	lift, bw := 360.0, 63.0

	// A lowercase sex token must still pick the female coefficients for
	// the estimated score. The request is the first against this engine,
	// so the result cannot come from a cached uppercase computation.
	pos, err := e.CompetitivePosition(context.Background(), model.FilterRequest{
		Sex: "f", UserLift: &lift, UserBodyweight: &bw,
	})
	require.NoError(t, err)
	assert.InDelta(t, scoring.ApproxDots(model.SexFemale, bw, lift), pos.EstimatedScore, 1e-9)
	assert.Equal(t, int64(2), pos.Total)
}

func TestLeaderboardLive(t *testing.T) {
	e := openTestEngine(t)

	page, err := e.Leaderboard(context.Background(), model.LeaderboardRequest{PageSize: 3})
	require.NoError(t, err)
	require.Len(t, page.Entries, 3)
	assert.Equal(t, int64(6), page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)

	// Sorted by dots descending: cal 489, dan 446, bob 441.
	assert.Equal(t, "cal", page.Entries[0].Name)
	assert.Equal(t, "dan", page.Entries[1].Name)
	assert.Equal(t, "bob", page.Entries[2].Name)
	assert.Equal(t, int64(1), page.Entries[0].Rank)

	second, err := e.Leaderboard(context.Background(), model.LeaderboardRequest{Page: 2, PageSize: 3})
	require.NoError(t, err)
	require.Len(t, second.Entries, 3)
	assert.Equal(t, int64(4), second.Entries[0].Rank)
	assert.Equal(t, "eli", second.Entries[0].Name)
}

func TestLeaderboardFiltersLive(t *testing.T) {
	e := openTestEngine(t)

	page, err := e.Leaderboard(context.Background(), model.LeaderboardRequest{
		Federation: "ipf", Year: 2025,
	})
	require.NoError(t, err)
	// ann, bob and dan lifted at IPF meets in 2025.
	assert.Equal(t, int64(3), page.TotalCount)

	byTotal, err := e.Leaderboard(context.Background(), model.LeaderboardRequest{
		SortBy: "total", Sex: "F",
	})
	require.NoError(t, err)
	require.Len(t, byTotal.Entries, 2)
	assert.Equal(t, "bea", byTotal.Entries[0].Name)

	_, err = e.Leaderboard(context.Background(), model.LeaderboardRequest{SortBy: "wilks"})
	assert.True(t, errors.Is(err, model.ErrUnknownLift))
}
