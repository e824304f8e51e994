// Package diff compares the gain codes of two STAR files row by row.
//
// The files must hold the same rows in the same order, e.g. a STAR file before and after a gain
// update. Rows are matched by position only. For every row with at least one changed gain code a
// report line is written:
//
//	Line 2:  V1: 3 -> 1; V2: 3 -> 3; V3: 3 -> 4
package diff

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/bruceraup/glims-aster-gains/pkg/aster"
	"github.com/bruceraup/glims-aster-gains/pkg/glims"
)

// Summary counts the differences found by Compare.
type Summary struct {
	Rows    int // rows compared
	Changed int // rows with at least one changed gain code

	// Transitions counts the changes per band, keyed like "3->1".
	Transitions map[aster.Band]map[string]int
}

func newSummary() *Summary {
	return &Summary{Transitions: make(map[aster.Band]map[string]int)}
}

func (s *Summary) add(band aster.Band, before, after string) {
	m, ok := s.Transitions[band]
	if !ok {
		m = make(map[string]int)
		s.Transitions[band] = m
	}
	m[before+"->"+after]++
}

// Write prints the summary to w.
func (s *Summary) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Rows compared: %d\nRows changed:  %d\n", s.Rows, s.Changed); err != nil {
		return err
	}
	for _, band := range aster.StarBands {
		m := s.Transitions[band]
		if len(m) == 0 {
			continue
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %d", k, m[k]))
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", band, strings.Join(parts, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// Compare reads before and after in lock step and writes a line to w for every row whose gain
// codes differ. The line number is the one of the row in before.
//
// If one file has more rows than the other, Compare returns an error wrapping aster.ErrStructure
// after reporting the rows both files have.
func Compare(before, after *glims.Reader, w io.Writer, schema glims.Schema) (*Summary, error) {
	sum := newSummary()
	for {
		okBefore := before.Next()
		okAfter := after.Next()
		if err := before.Err(); err != nil {
			return sum, fmt.Errorf("before: %w", err)
		}
		if err := after.Err(); err != nil {
			return sum, fmt.Errorf("after: %w", err)
		}
		if !okBefore && !okAfter {
			return sum, nil
		}
		if okBefore != okAfter {
			return sum, fmt.Errorf("%w: row count differs after %d rows", aster.ErrStructure, sum.Rows)
		}

		recBefore, recAfter := before.Record(), after.Record()
		gainsBefore, err := schema.GainFields(recBefore)
		if err != nil {
			return sum, fmt.Errorf("before: %w", err)
		}
		gainsAfter, err := schema.GainFields(recAfter)
		if err != nil {
			return sum, fmt.Errorf("after: %w", err)
		}
		sum.Rows++

		if slices.Equal(gainsBefore, gainsAfter) {
			continue
		}
		sum.Changed++
		for i, band := range aster.StarBands {
			if gainsBefore[i] != gainsAfter[i] {
				sum.add(band, gainsBefore[i], gainsAfter[i])
			}
		}

		_, err = fmt.Fprintf(w, "Line %d:  V1: %s -> %s; V2: %s -> %s; V3: %s -> %s\n", recBefore.Line,
			gainsBefore[0], gainsAfter[0], gainsBefore[1], gainsAfter[1], gainsBefore[2], gainsAfter[2])
		if err != nil {
			return sum, err
		}
	}
}
