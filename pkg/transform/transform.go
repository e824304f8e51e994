// Package transform updates the gain codes of STAR records.
//
// For every data record the observation window is reduced to its middle day of year and the
// target points to their average latitude. The continuous gain of each VNIR band is then looked
// up for that day and latitude, classified, and written back into the record's gain fields.
// Section rows are passed through untouched.
package transform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bruceraup/glims-aster-gains/pkg/aster"
	"github.com/bruceraup/glims-aster-gains/pkg/gain"
	"github.com/bruceraup/glims-aster-gains/pkg/glims"
	"go.uber.org/zap"
)

// Options configures a Transformer.
type Options struct {
	// Schema is the record layout, defaults to glims.DefaultSchema().
	Schema *glims.Schema

	// EqTime is the equatorial crossing time of the satellite in decimal hours.
	EqTime float64

	// ProgressEvery logs the number of processed rows every n rows. Zero disables it.
	ProgressEvery int

	// Logger receives progress entries, defaults to a no-op logger.
	Logger *zap.SugaredLogger

	// Recorder observes rows and lookups, e.g. for metrics.
	Recorder Recorder
}

// A Recorder observes the work of a Transformer.
type Recorder interface {
	// Row is called for every row read, sentinel reports a section row.
	Row(sentinel bool)

	// Lookup is called for every classified gain lookup.
	Lookup(band aster.Band, code aster.GainCode, took time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) Row(bool) {}
func (nopRecorder) Lookup(aster.Band, aster.GainCode, time.Duration) {}

// Stats counts the rows of a Run.
type Stats struct {
	Rows        int // all rows read
	Sentinels   int // section rows passed through
	Transformed int // data rows with updated gains
}

// Transformer updates the gain codes of STAR records.
type Transformer struct {
	schema        glims.Schema
	eqTime        float64
	progressEvery int
	source        gain.Source
	log           *zap.SugaredLogger
	rec           Recorder
}

// New returns a Transformer that looks up gains from src.
func New(src gain.Source, opts Options) (*Transformer, error) {
	if src == nil {
		return nil, errors.New("transform: no gain source")
	}
	schema := glims.DefaultSchema()
	if opts.Schema != nil {
		schema = *opts.Schema
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}

	return &Transformer{
		schema:        schema,
		eqTime:        opts.EqTime,
		progressEvery: opts.ProgressEvery,
		source:        src,
		log:           opts.Logger,
		rec:           opts.Recorder,
	}, nil
}

// Transform returns rec with updated gain codes. Section rows are returned as they are.
// Apart from the gain fields the returned record equals rec, including its field count.
func (t *Transformer) Transform(ctx context.Context, rec glims.Record) (glims.Record, error) {
	if t.schema.IsSentinel(rec) {
		return rec, nil
	}

	obs, err := t.schema.Observation(rec)
	if err != nil {
		return glims.Record{}, err
	}

	start, err := glims.ParseDate(obs.WindowStart)
	if err != nil {
		return glims.Record{}, fmt.Errorf("line %d: window start: %w", rec.Line, err)
	}
	end, err := glims.ParseDate(obs.WindowEnd)
	if err != nil {
		return glims.Record{}, fmt.Errorf("line %d: window end: %w", rec.Line, err)
	}
	doy := glims.MidDayOfYear(start, end)

	lat, err := glims.AverageLatitude(obs.Points)
	if err != nil {
		return glims.Record{}, fmt.Errorf("line %d: %w", rec.Line, err)
	}

	var codes [3]aster.GainCode
	for i, band := range aster.StarBands {
		q := gain.Query{DOY: doy, Lat: lat, Band: band, EqTime: t.eqTime}
		begin := time.Now()
		g, err := t.source.Gain(ctx, q)
		if err != nil {
			return glims.Record{}, fmt.Errorf("line %d: %w", rec.Line, err)
		}
		code, err := gain.Classify(g)
		if err != nil {
			return glims.Record{}, fmt.Errorf("line %d: %s: %w", rec.Line, q, err)
		}
		t.rec.Lookup(band, code, time.Since(begin))
		codes[i] = code
	}
	obs.SetGains(codes)

	return glims.Record{Fields: obs.Fields(), Line: rec.Line}, nil
}

// Run transforms all records of r and writes them to w, one at a time.
// It stops at the first error; all records written until then are complete.
func (t *Transformer) Run(ctx context.Context, r *glims.Reader, w *glims.Writer) (Stats, error) {
	var stats Stats
	for r.Next() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		rec := r.Record()
		sentinel := t.schema.IsSentinel(rec)
		stats.Rows++
		t.rec.Row(sentinel)

		out, err := t.Transform(ctx, rec)
		if err != nil {
			return stats, err
		}
		if err := w.Write(out.Fields); err != nil {
			return stats, fmt.Errorf("write line %d: %w", rec.Line, err)
		}

		if sentinel {
			stats.Sentinels++
		} else {
			stats.Transformed++
		}
		if t.progressEvery > 0 && stats.Rows%t.progressEvery == 0 {
			t.log.Infow("progress", "rows", stats.Rows, "line", rec.Line)
		}
	}
	if err := r.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}
