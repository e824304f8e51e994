// Package gain derives ASTER gain codes from continuous gain values.
//
// A continuous gain is the value computed by the GLIMS gain model: its integer part is the
// gain regime (0 dark, 1 high, 2 norm, 3 low1, 4 low2, 5 bright) and its fractional part the
// fraction of the saturation radiance reached at that setting. Sources of continuous gains are
// the GLIMS web service (package gainservice) and the local Model.
package gain

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/bruceraup/glims-aster-gains/pkg/aster"
)

// SaturationAdjustment is added to a continuous gain before it is truncated to its regime.
// It moves values close to saturation into the next lower gain setting.
const SaturationAdjustment = 0.2

// codePerRegime maps gain regimes to the codes stored in a STAR record.
var codePerRegime = map[aster.Regime]aster.GainCode{
	aster.RegimeDark:   aster.GainHigh,
	aster.RegimeHigh:   aster.GainHigh,
	aster.RegimeNorm:   aster.GainNormal,
	aster.RegimeLow1:   aster.GainLow,
	aster.RegimeLow2:   aster.GainLow,
	aster.RegimeBright: aster.GainLow,
}

// Query specifies a single gain lookup.
type Query struct {
	DOY    int        // day of year, 1-based
	Lat    float64    // latitude in degrees
	Band   aster.Band // ASTER band
	EqTime float64    // equatorial crossing time in decimal hours
}

func (q Query) String() string {
	return fmt.Sprintf("doy=%d lat=%s band=%d eq_time=%s", q.DOY, FormatFloat(q.Lat), q.Band, FormatFloat(q.EqTime))
}

// A Source returns the continuous gain for a query.
type Source interface {
	Gain(ctx context.Context, q Query) (float64, error)
}

// RegimeOf returns the gain regime of the continuous gain g after the saturation adjustment.
func RegimeOf(g float64) (aster.Regime, error) {
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return 0, fmt.Errorf("%w: gain %v", aster.ErrDomain, g)
	}
	r := math.Floor(g + SaturationAdjustment)
	if r < float64(aster.RegimeDark) || r > float64(aster.RegimeBright) {
		return 0, fmt.Errorf("%w: gain %v gives regime %v, want 0..5", aster.ErrDomain, g, r)
	}
	return aster.Regime(r), nil
}

// CodeOf returns the gain code for regime r.
func CodeOf(r aster.Regime) (aster.GainCode, error) {
	code, ok := codePerRegime[r]
	if !ok {
		return 0, fmt.Errorf("%w: no gain code for regime %d", aster.ErrDomain, int(r))
	}
	return code, nil
}

// Classify maps the continuous gain g to a gain code.
func Classify(g float64) (aster.GainCode, error) {
	r, err := RegimeOf(g)
	if err != nil {
		return 0, err
	}
	return CodeOf(r)
}

// Describe formats g the way the gain model's command-line tool does,
// e.g. "Gain:  2.982356  (norm gain at 98.24% saturation)".
func Describe(g float64) string {
	intpart := math.Trunc(g)
	frc := 100 * (g - intpart)
	return fmt.Sprintf("Gain:  %f  (%s gain at %.2f%% saturation)", g, aster.Regime(intpart), frc)
}

// FormatFloat formats f in its shortest representation, 60 as "60" and 61.29 as "61.29".
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
