package glims

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bruceraup/glims-aster-gains/pkg/aster"
	"gonum.org/v1/gonum/stat"
)

// ParsePoint returns the latitude in decimal degrees of a point token like
//
//	-139 47'49.19"  61 17'07.08"
//
// The token holds longitude and latitude, each as degrees followed by minutes'seconds".
// The minutes and seconds are added to the degrees as they are, the sign of the degrees
// is not applied to them.
func ParsePoint(tok string) (float64, error) {
	groups := strings.Fields(tok)
	if len(groups) != 4 {
		return 0, fmt.Errorf("%w: point %q: %d groups, want 4", aster.ErrParse, tok, len(groups))
	}

	deg, err := strconv.ParseFloat(groups[2], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: point %q: latitude degrees %q", aster.ErrParse, tok, groups[2])
	}

	min, sec, err := parseMinSec(groups[3])
	if err != nil {
		return 0, fmt.Errorf("%w: point %q: %v", aster.ErrParse, tok, err)
	}

	return deg + min/60.0 + sec/3600.0, nil
}

// parseMinSec parses minutes and seconds formatted as 17'07.08".
func parseMinSec(s string) (min, sec float64, err error) {
	parts := strings.Split(s, "'")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("minutes/seconds %q", s)
	}
	if min, err = strconv.ParseFloat(parts[0], 64); err != nil {
		return 0, 0, fmt.Errorf("minutes %q", parts[0])
	}
	secStr := strings.Trim(parts[1], `"`)
	if sec, err = strconv.ParseFloat(secStr, 64); err != nil {
		return 0, 0, fmt.Errorf("seconds %q", parts[1])
	}
	return min, sec, nil
}

// AverageLatitude returns the mean latitude of the point tokens.
// The list ends at the first empty token.
func AverageLatitude(points []string) (float64, error) {
	lats := make([]float64, 0, len(points))
	for _, p := range points {
		if strings.TrimSpace(p) == "" {
			break
		}
		lat, err := ParsePoint(p)
		if err != nil {
			return 0, err
		}
		lats = append(lats, lat)
	}

	if len(lats) == 0 {
		return 0, fmt.Errorf("%w: no points", aster.ErrParse)
	}
	return stat.Mean(lats, nil), nil
}
