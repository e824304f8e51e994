package main

import (
	"fmt"
	"strconv"

	"github.com/bruceraup/glims-aster-gains/internal/log"
	"github.com/bruceraup/glims-aster-gains/pkg/aster"
	"github.com/bruceraup/glims-aster-gains/pkg/gain"
	"github.com/urfave/cli/v2"
)

func (c *cmd) gain(ctx *cli.Context) error {
	if n := ctx.NArg(); n != 3 && n != 4 {
		return cli.Exit("usage: gain DOY LAT BAND [EQ_TIME]", exitFailure)
	}
	args := ctx.Args()

	doy, err := strconv.Atoi(args.Get(0))
	if err != nil || doy < 1 || doy > 366 {
		return cli.Exit(fmt.Sprintf("invalid day of year %q", args.Get(0)), exitFailure)
	}
	lat, err := strconv.ParseFloat(args.Get(1), 64)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid latitude %q", args.Get(1)), exitFailure)
	}
	band, err := strconv.Atoi(args.Get(2))
	if err != nil || !aster.Band(band).Valid() {
		return cli.Exit(fmt.Sprintf("invalid band %q, want 1..9", args.Get(2)), exitFailure)
	}
	eqTime := c.cfg.Lookup.EqCrossingTime
	if ctx.NArg() == 4 {
		if eqTime, err = strconv.ParseFloat(args.Get(3), 64); err != nil {
			return cli.Exit(fmt.Sprintf("invalid equatorial crossing time %q", args.Get(3)), exitFailure)
		}
	}

	src, closeSrc, err := c.source(log.With())
	if err != nil {
		return exitError(err)
	}
	defer closeSrc()

	q := gain.Query{DOY: doy, Lat: lat, Band: aster.Band(band), EqTime: eqTime}
	g, err := src.Gain(ctx.Context, q)
	if err != nil {
		return exitError(err)
	}

	fmt.Fprintln(c.stdout, gain.Describe(g))
	if code, err := gain.Classify(g); err == nil {
		fmt.Fprintf(c.stdout, "Code:  %d  (%s)\n", code, code)
	}
	return nil
}
