package main

import (
	"os"

	"github.com/bruceraup/glims-aster-gains/internal/log"
	"github.com/bruceraup/glims-aster-gains/pkg/diff"
	"github.com/bruceraup/glims-aster-gains/pkg/glims"
	"github.com/urfave/cli/v2"
)

func (c *cmd) diff(ctx *cli.Context) error {
	before, after := c.cfg.Files.DiffBefore, c.cfg.Files.DiffAfter
	switch ctx.NArg() {
	case 0:
	case 2:
		before, after = ctx.Args().Get(0), ctx.Args().Get(1)
	default:
		return cli.Exit("diff needs two files to compare", exitFailure)
	}

	f1, err := os.Open(before)
	if err != nil {
		return exitError(err)
	}
	defer f1.Close()

	f2, err := os.Open(after)
	if err != nil {
		return exitError(err)
	}
	defer f2.Close()

	sum, err := diff.Compare(glims.NewReader(f1), glims.NewReader(f2), c.stdout, c.cfg.Schema())
	if err != nil {
		return exitError(err)
	}

	log.Infow("diff finished", "before", before, "after", after, "rows", sum.Rows, "changed", sum.Changed)

	if ctx.Bool("summary") {
		if err := sum.Write(c.stdout); err != nil {
			return exitError(err)
		}
	}
	return nil
}
