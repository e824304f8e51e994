package gain

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/bruceraup/glims-aster-gains/pkg/aster"
)

// gainKey starts the gain assignment in a service response.
const gainKey = "Gain"

// ParseResponse returns the number of the first "Gain = <number>" assignment in a
// gain service response body, e.g.
//
//	ASTER gains:
//	Key: For DOY=180, Lat=39, Band=3, Eq_cross_time=21: Gain = 2.982356 (norm gain at 98.24% saturation)
//
// Blanks around the '=' are optional. The number consists of digits, '.' and '-'.
func ParseResponse(body []byte) (float64, error) {
	pos := 0
	for {
		idx := bytes.Index(body[pos:], []byte(gainKey))
		if idx < 0 {
			break
		}
		pos += idx + len(gainKey)

		p := skipBlanks(body, pos)
		if p >= len(body) || body[p] != '=' {
			continue
		}
		p = skipBlanks(body, p+1)

		end := p
		for end < len(body) && isNumberByte(body[end]) {
			end++
		}
		if end == p {
			continue
		}

		num := string(body[p:end])
		g, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: gain value %q", aster.ErrParse, num)
		}
		return g, nil
	}

	return 0, fmt.Errorf("%w: no %q assignment in response %q", aster.ErrParse, gainKey+" =", abbrev(body))
}

func skipBlanks(b []byte, i int) int {
	for i < len(b) && (b[i] == ' ' || b[i] == '\t') {
		i++
	}
	return i
}

func isNumberByte(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == '-'
}

// abbrev shortens long response bodies for error messages.
func abbrev(b []byte) string {
	const max = 120
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
