package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"golang.org/x/sync/errgroup"

	"github.com/openlift/ironstats/internal/domain/classes"
	"github.com/openlift/ironstats/internal/domain/model"
	"github.com/openlift/ironstats/internal/domain/scoring"
	"github.com/openlift/ironstats/pkg/logger"
)

// rawRow mirrors the on-disk parquet schema. DOTS columns are optional:
// older conversions of the source data did not carry them, in which case
// the loader computes them.
type rawRow struct {
	Name       string  `parquet:"name,optional"`
	Sex        string  `parquet:"sex"`
	Equipment  string  `parquet:"equipment,optional"`
	Bodyweight float64 `parquet:"bodyweight_kg,optional"`
	Squat      float64 `parquet:"best3squat_kg,optional"`
	Bench      float64 `parquet:"best3bench_kg,optional"`
	Deadlift   float64 `parquet:"best3deadlift_kg,optional"`
	Total      float64 `parquet:"total_kg,optional"`
	Dots       float64 `parquet:"dots,optional"`
	Federation string  `parquet:"federation,optional"`
	Date       string  `parquet:"date,optional"`
}

// Resolve returns the dataset file to read. When the configured path is
// missing it falls back to the most recently modified file in the same
// directory sharing the path's name prefix and extension, so a fresh
// conversion like lifts-2025-08.parquet is picked up without a config
// change.
func Resolve(path string) (string, error) {
	const op = "dataset.resolve"
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	prefix := strings.TrimSuffix(base, ext)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", model.NewKind(op, ErrNoData)
	}
	var newest string
	var newestMod time.Time
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = name
			newestMod = info.ModTime()
		}
	}
	if newest == "" {
		return "", model.NewKind(op, ErrNoData)
	}
	return filepath.Join(dir, newest), nil
}

// Load reads the parquet file at path (with fallback discovery), applies
// the optional row cap, and builds the columnar table with every derived
// column filled in.
func Load(ctx context.Context, path string, sampleCap int) (*Dataset, error) {
	const op = "dataset.load"
	log := logger.Named("dataset")

	resolved, err := Resolve(path)
	if err != nil {
		return nil, err
	}
	if resolved != path {
		log.Info(ctx, "configured dataset path missing; using fallback",
			logger.String("configured", path), logger.String("resolved", resolved))
	}

	rows, err := parquet.ReadFile[rawRow](resolved)
	if err != nil {
		return nil, model.Wrap(op, fmt.Errorf("%w: %w", ErrLoad, err))
	}

	rows = sample(rows, sampleCap)
	d := columnize(rows)
	d.path = resolved

	if err := d.derive(ctx, rows); err != nil {
		return nil, model.Wrap(op, err)
	}

	log.Info(ctx, "dataset loaded",
		logger.String("path", resolved),
		logger.Int("rows", d.Len()),
		logger.Any("has_federation", d.HasFederation()))
	return d, nil
}

// sample applies the row cap with stride sampling so the retained rows
// stay spread across the file instead of truncating its tail.
func sample(rows []rawRow, limit int) []rawRow {
	if limit <= 0 || len(rows) <= limit {
		return rows
	}
	stride := float64(len(rows)) / float64(limit)
	out := make([]rawRow, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, rows[int(float64(i)*stride)])
	}
	return out
}

func columnize(rows []rawRow) *Dataset {
	n := len(rows)
	d := &Dataset{
		Names:      make([]string, n),
		Sexes:      make([]string, n),
		Equipment:  make([]string, n),
		Bodyweight: make([]float64, n),
		Squat:      make([]float64, n),
		Bench:      make([]float64, n),
		Deadlift:   make([]float64, n),
		Total:      make([]float64, n),
		DateUnix:   make([]int64, n),
	}
	hasFed := false
	for i, r := range rows {
		d.Names[i] = r.Name
		d.Sexes[i] = strings.ToUpper(r.Sex)
		d.Equipment[i] = r.Equipment
		d.Bodyweight[i] = r.Bodyweight
		d.Squat[i] = r.Squat
		d.Bench[i] = r.Bench
		d.Deadlift[i] = r.Deadlift
		d.Total[i] = r.Total
		if r.Federation != "" {
			hasFed = true
		}
		if r.Date != "" {
			if t, err := time.Parse("2006-01-02", r.Date); err == nil {
				d.DateUnix[i] = t.Unix()
			}
		}
	}
	if hasFed {
		d.Federation = make([]string, n)
		for i, r := range rows {
			d.Federation[i] = strings.ToUpper(r.Federation)
		}
	}
	return d
}

// derive fills the precomputed columns. Each column family is an
// independent pass, so they run in parallel.
func (d *Dataset) derive(ctx context.Context, rows []rawRow) error {
	n := d.Len()
	d.SquatDots = make([]float64, n)
	d.BenchDots = make([]float64, n)
	d.DeadliftDots = make([]float64, n)
	d.TotalDots = make([]float64, n)
	d.ClassIPF = make([]string, n)
	d.ClassPara = make([]string, n)
	d.ClassWP = make([]string, n)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		for i := 0; i < n; i++ {
			sex := model.Sex(d.Sexes[i])
			bw := d.Bodyweight[i]
			d.SquatDots[i] = scoring.Dots(sex, bw, d.Squat[i])
			d.BenchDots[i] = scoring.Dots(sex, bw, d.Bench[i])
			d.DeadliftDots[i] = scoring.Dots(sex, bw, d.Deadlift[i])
			if rows[i].Dots > 0 {
				d.TotalDots[i] = rows[i].Dots
			} else {
				d.TotalDots[i] = scoring.Dots(sex, bw, d.Total[i])
			}
		}
		return nil
	})
	g.Go(func() error {
		for i := 0; i < n; i++ {
			female := d.Sexes[i] == string(model.SexFemale)
			bw := d.Bodyweight[i]
			d.ClassIPF[i] = classes.Assign(classes.SystemIPF, female, bw)
			d.ClassPara[i] = classes.Assign(classes.SystemPara, female, bw)
			d.ClassWP[i] = classes.Assign(classes.SystemWP, female, bw)
		}
		return nil
	})
	return g.Wait()
}
