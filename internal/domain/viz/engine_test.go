package viz

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/openlift/ironstats/internal/domain/dataset"
	"github.com/openlift/ironstats/internal/domain/model"
	"github.com/openlift/ironstats/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func testDataset(n int) *dataset.Dataset {
	ds := &dataset.Dataset{}
	for i := 0; i < n; i++ {
		sex := "M"
		if i%2 == 1 {
			sex = "F"
		}
		ds.Names = append(ds.Names, "lifter")
		ds.Sexes = append(ds.Sexes, sex)
		ds.Equipment = append(ds.Equipment, "Raw")
		ds.Bodyweight = append(ds.Bodyweight, 60+float64(i))
		ds.Squat = append(ds.Squat, 100+float64(i)*2)
		ds.Bench = append(ds.Bench, 60+float64(i))
		ds.Deadlift = append(ds.Deadlift, 120+float64(i)*2)
		ds.Total = append(ds.Total, 280+float64(i)*5)
		ds.SquatDots = append(ds.SquatDots, 80+float64(i))
		ds.BenchDots = append(ds.BenchDots, 50+float64(i))
		ds.DeadliftDots = append(ds.DeadliftDots, 90+float64(i))
		ds.TotalDots = append(ds.TotalDots, 220+float64(i))
		ds.ClassIPF = append(ds.ClassIPF, "93kg")
		ds.ClassPara = append(ds.ClassPara, "97kg")
		ds.ClassWP = append(ds.ClassWP, "94kg")
		ds.DateUnix = append(ds.DateUnix, 0)
	}
	return ds
}

func TestComputeBasic(t *testing.T) {
	ds := testDataset(40)
	e := NewEngine(ds, WithBinCount(10))

	res, err := e.Compute(context.Background(), model.FilterRequest{})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if res.RowCount != 40 {
		t.Fatalf("row count = %d, want 40", res.RowCount)
	}
	if got := len(res.RawHistogram.Counts); got != 10 {
		t.Fatalf("raw histogram bins = %d, want 10", got)
	}
	if got := len(res.RawHistogram.Edges); got != 11 {
		t.Fatalf("raw histogram edges = %d, want 11", got)
	}
	sum := 0
	for _, c := range res.ScoreHistogram.Counts {
		sum += c
	}
	if sum != 40 {
		t.Fatalf("score histogram counts sum = %d, want 40", sum)
	}
	if len(res.RawScatter) != 40 || len(res.ScoreScatter) != 40 {
		t.Fatalf("scatter lengths = %d/%d, want 40", len(res.RawScatter), len(res.ScoreScatter))
	}
	if res.RawPercentile != nil || res.ScorePercentile != nil {
		t.Fatal("percentiles should be absent without a user lift")
	}
	if res.ElapsedMS < 0 {
		t.Fatalf("elapsed = %v", res.ElapsedMS)
	}
}

func TestComputeFiltered(t *testing.T) {
	ds := testDataset(40)
	e := NewEngine(ds)

	res, err := e.Compute(context.Background(), model.FilterRequest{Sex: "F", Lift: "bench"})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if res.RowCount != 20 {
		t.Fatalf("row count = %d, want 20", res.RowCount)
	}
	for _, p := range res.RawScatter {
		if p.Sex != "F" {
			t.Fatalf("scatter leaked sex %q", p.Sex)
		}
	}
	// Bench values for odd rows run 61, 63, ... 99.
	if res.RawHistogram.Min != 61 || res.RawHistogram.Max != 99 {
		t.Fatalf("bench range = [%v, %v], want [61, 99]", res.RawHistogram.Min, res.RawHistogram.Max)
	}
}

func TestComputeUserPercentiles(t *testing.T) {
	ds := testDataset(40)
	e := NewEngine(ds)
	lift := 400.0
	bw := 90.0

	res, err := e.Compute(context.Background(), model.FilterRequest{
		UserLift:       &lift,
		UserBodyweight: &bw,
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if res.RawPercentile == nil {
		t.Fatal("raw percentile missing")
	}
	// Totals run 280..475 in steps of 5; 400 beats rows 0..23.
	if want := math.Round(100 * 24.0 / 40.0); *res.RawPercentile != want {
		t.Fatalf("raw percentile = %v, want %v", *res.RawPercentile, want)
	}
	if res.ScorePercentile == nil {
		t.Fatal("score percentile missing")
	}
	if *res.ScorePercentile < 0 || *res.ScorePercentile > 100 {
		t.Fatalf("score percentile out of range: %v", *res.ScorePercentile)
	}
}

func TestComputeUserSexCaseInsensitive(t *testing.T) {
	ds := testDataset(40)
	e := NewEngine(ds)
	lift := 250.0
	bw := 60.0

	// At 60kg a 250 total scores ~277 with the female coefficients
	// (above every female dots value in the dataset) but only ~211 with
	// the male ones (below every female dots value). The percentile
	// therefore pins down which coefficient set scored the user.
	upper, err := e.Compute(context.Background(), model.FilterRequest{
		Sex: "F", UserLift: &lift, UserBodyweight: &bw,
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	lower, err := e.Compute(context.Background(), model.FilterRequest{
		Sex: "f", UserLift: &lift, UserBodyweight: &bw,
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if upper.ScorePercentile == nil || lower.ScorePercentile == nil {
		t.Fatal("score percentile missing")
	}
	if *upper.ScorePercentile != 100 {
		t.Fatalf("uppercase sex percentile = %v, want 100", *upper.ScorePercentile)
	}
	if *lower.ScorePercentile != *upper.ScorePercentile {
		t.Fatalf("sex token case changed the score percentile: %v vs %v",
			*lower.ScorePercentile, *upper.ScorePercentile)
	}
}

func TestComputeUnknownLift(t *testing.T) {
	e := NewEngine(testDataset(4))

	_, err := e.Compute(context.Background(), model.FilterRequest{Lift: "press"})
	if !errors.Is(err, model.ErrUnknownLift) {
		t.Fatalf("err = %v, want ErrUnknownLift", err)
	}
}

func TestComputeEmptyCohort(t *testing.T) {
	ds := testDataset(4)
	e := NewEngine(ds)
	lift := 100.0

	res, err := e.Compute(context.Background(), model.FilterRequest{
		Equipment: []string{"Multi-ply"},
		UserLift:  &lift,
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if res.RowCount != 0 {
		t.Fatalf("row count = %d, want 0", res.RowCount)
	}
	if len(res.RawHistogram.Counts) != 0 || len(res.RawHistogram.Edges) != 0 {
		t.Fatal("empty cohort should produce empty histograms")
	}
	if res.RawPercentile != nil {
		t.Fatal("percentile should be absent for an empty cohort")
	}
}
