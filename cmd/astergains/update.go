package main

import (
	"fmt"
	"os"
	"time"

	"github.com/bruceraup/glims-aster-gains/internal/log"
	"github.com/bruceraup/glims-aster-gains/internal/metrics"
	"github.com/bruceraup/glims-aster-gains/pkg/glims"
	"github.com/bruceraup/glims-aster-gains/pkg/transform"
	"github.com/google/uuid"
	"github.com/mholt/archiver/v3"
	"github.com/urfave/cli/v2"
)

func (c *cmd) update(ctx *cli.Context) error {
	if ctx.NArg() > 0 {
		return cli.Exit("update takes no arguments, use --input and --output", exitFailure)
	}

	input := ctx.String("input")
	if input == "" {
		input = c.cfg.Files.Input
	}
	output := ctx.String("output")
	if output == "" {
		output = c.cfg.Files.OutputName(time.Now())
	}

	runID := uuid.New().String()
	logger := log.With("run_id", runID)

	lines, err := countLines(input)
	if err != nil {
		return exitError(err)
	}
	logger.Infow("updating gains", "input", input, "output", output, "lines", lines,
		"source", c.cfg.Lookup.Source, "eq_time", c.cfg.Lookup.EqCrossingTime)

	src, closeSrc, err := c.source(logger)
	if err != nil {
		return exitError(err)
	}
	defer closeSrc()

	run := metrics.NewRun(runID)
	schema := c.cfg.Schema()
	tr, err := transform.New(src, transform.Options{
		Schema:        &schema,
		EqTime:        c.cfg.Lookup.EqCrossingTime,
		ProgressEvery: c.cfg.Output.ProgressEvery,
		Logger:        logger,
		Recorder:      run,
	})
	if err != nil {
		return exitError(err)
	}

	start := time.Now()
	stats, err := c.transformFile(ctx, tr, input, output)
	run.Finish(time.Now())
	if mf := c.cfg.Output.MetricsFile; mf != "" {
		if merr := run.WriteToTextfile(mf); merr != nil {
			logger.Warnw("metrics not written", "file", mf, "error", merr)
		}
	}
	if err != nil {
		logger.Errorw("update aborted", "rows", stats.Rows, "output", output)
		return exitError(err)
	}

	if c.cfg.Output.Compress {
		if err := archiver.CompressFile(output, output+".gz"); err != nil {
			return exitError(fmt.Errorf("compress %s: %w", output, err))
		}
		if err := os.Remove(output); err != nil {
			return exitError(err)
		}
		output += ".gz"
	}

	logger.Infow("update finished", "output", output, "rows", stats.Rows, "sentinels", stats.Sentinels,
		"transformed", stats.Transformed, "duration", time.Since(start))
	return nil
}

// transformFile runs tr over the STAR file input and writes the result to output.
func (c *cmd) transformFile(ctx *cli.Context, tr *transform.Transformer, input, output string) (transform.Stats, error) {
	in, err := os.Open(input)
	if err != nil {
		return transform.Stats{}, err
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return transform.Stats{}, err
	}
	defer out.Close()

	w := glims.NewWriter(out)
	w.LineTerminator = c.cfg.Output.LineTerminator()

	stats, err := tr.Run(ctx.Context, glims.NewReader(in), w)
	if err != nil {
		return stats, err
	}
	return stats, out.Close()
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return glims.CountLines(f)
}
