// Package aster contains common constants and type definitions for the ASTER instrument.
package aster

import (
	"fmt"
	"strconv"
)

// Band is an ASTER VNIR or SWIR band number.
type Band int

// The bands that carry a gain setting in a GLIMS STAR record.
const (
	BandVNIR1 Band = iota + 1
	BandVNIR2
	BandVNIR3N
)

// StarBands lists the bands written to a STAR record, in column order.
var StarBands = []Band{BandVNIR1, BandVNIR2, BandVNIR3N}

// Valid reports whether b is one of the nine VNIR/SWIR bands.
func (b Band) Valid() bool {
	return b >= 1 && b <= 9
}

func (b Band) String() string {
	switch {
	case b >= 1 && b <= 3:
		return "VNIR" + strconv.Itoa(int(b))
	case b >= 4 && b <= 9:
		return "SWIR" + strconv.Itoa(int(b))
	}
	return fmt.Sprintf("Band(%d)", int(b))
}

// GainCode is the discrete gain setting stored in a STAR record.
type GainCode int

// Available gain codes.
const (
	GainLow    GainCode = 1
	GainNormal GainCode = 3
	GainHigh   GainCode = 4
)

func (c GainCode) String() string {
	switch c {
	case GainLow:
		return "low"
	case GainNormal:
		return "normal"
	case GainHigh:
		return "high"
	}
	return fmt.Sprintf("GainCode(%d)", int(c))
}

// Field returns the code as written into a record field.
func (c GainCode) Field() string {
	return strconv.Itoa(int(c))
}

// Regime is the integer part of a continuous gain value.
type Regime int

// Gain regimes as reported by the gain model.
const (
	RegimeDark Regime = iota
	RegimeHigh
	RegimeNorm
	RegimeLow1
	RegimeLow2
	RegimeBright
)

func (r Regime) String() string {
	if r < RegimeDark || r > RegimeBright {
		return fmt.Sprintf("Regime(%d)", int(r))
	}
	return [...]string{"dark", "high", "norm", "low1", "low2", "bright"}[r]
}
