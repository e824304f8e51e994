// Package glims provides functions for reading and writing GLIMS ASTER STAR files.
//
// A STAR file is a delimited text file with '|' as field delimiter and '^' as quote character.
// Every row describes one glacier observation request: the observation window, the ASTER gain
// settings of the VNIR bands and the corner points of the target. Rows whose window start
// contains a marker like "Lifetime" are section rows and carry no observation.
package glims

import (
	"fmt"
	"strings"

	"github.com/bruceraup/glims-aster-gains/pkg/aster"
)

const (
	// Delimiter separates the fields of a record.
	Delimiter = '|'

	// Quote encloses fields containing delimiters, quotes or line breaks.
	Quote = '^'

	// DefaultSentinelMarker identifies section rows.
	DefaultSentinelMarker = "Lifetime"
)

// Schema specifies the 0-based field positions of a STAR record.
type Schema struct {
	WindowStart    int    // observation window start, MM/DD/YYYY HH:MM:SS
	WindowEnd      int    // observation window end
	Gains          int    // first of the gain fields, one per aster.StarBands
	Points         int    // first point, the points fill the rest of the record
	SentinelMarker string // substring of the window start of section rows
}

// DefaultSchema returns the layout of the STAR tool exports.
func DefaultSchema() Schema {
	return Schema{
		WindowStart:    38,
		WindowEnd:      39,
		Gains:          17,
		Points:         49,
		SentinelMarker: DefaultSentinelMarker,
	}
}

// Validate checks that the fields of the schema do not overlap.
func (s Schema) Validate() error {
	nGains := len(aster.StarBands)
	for name, col := range map[string]int{"window start": s.WindowStart, "window end": s.WindowEnd} {
		if col < 0 {
			return fmt.Errorf("schema: negative %s column %d", name, col)
		}
		if col >= s.Gains && col < s.Gains+nGains {
			return fmt.Errorf("schema: %s column %d overlaps the gain columns %d..%d", name, col, s.Gains, s.Gains+nGains-1)
		}
		if col >= s.Points {
			return fmt.Errorf("schema: %s column %d overlaps the points starting at %d", name, col, s.Points)
		}
	}
	if s.Gains < 0 || s.Gains+nGains > s.Points {
		return fmt.Errorf("schema: gain columns %d..%d overlap the points starting at %d", s.Gains, s.Gains+nGains-1, s.Points)
	}
	if s.WindowStart == s.WindowEnd {
		return fmt.Errorf("schema: window start and end share column %d", s.WindowStart)
	}
	return nil
}

// minFields returns the number of fields a data record needs besides its points.
func (s Schema) minFields() int {
	n := s.Gains + len(aster.StarBands)
	for _, col := range []int{s.WindowStart + 1, s.WindowEnd + 1} {
		if col > n {
			n = col
		}
	}
	return n
}

// IsSentinel reports whether rec is a section row.
func (s Schema) IsSentinel(rec Record) bool {
	if s.WindowStart >= len(rec.Fields) {
		return false
	}
	return strings.Contains(rec.Fields[s.WindowStart], s.SentinelMarker)
}

// GainFields returns the raw gain fields of rec.
func (s Schema) GainFields(rec Record) ([]string, error) {
	end := s.Gains + len(aster.StarBands)
	if end > len(rec.Fields) {
		return nil, fmt.Errorf("%w: line %d: %d fields, gain columns need %d", aster.ErrStructure, rec.Line, len(rec.Fields), end)
	}
	return rec.Fields[s.Gains:end], nil
}

// Observation returns the typed view of the data record rec.
func (s Schema) Observation(rec Record) (*Observation, error) {
	if n := s.minFields(); len(rec.Fields) < n {
		return nil, fmt.Errorf("%w: line %d: %d fields, want at least %d", aster.ErrStructure, rec.Line, len(rec.Fields), n)
	}

	fields := make([]string, len(rec.Fields))
	copy(fields, rec.Fields)
	obs := &Observation{
		WindowStart: fields[s.WindowStart],
		WindowEnd:   fields[s.WindowEnd],
		fields:      fields,
		gainCol:     s.Gains,
	}
	copy(obs.Gains[:], fields[s.Gains:])
	if s.Points < len(fields) {
		obs.Points = fields[s.Points:]
	}
	return obs, nil
}

// Record is a row of a STAR file.
type Record struct {
	Fields []string

	// Line is the 1-based number of the last physical line of the record in its file.
	Line int
}

// Observation is a data record with named access to the fields the gain update reads and writes.
// All other fields are kept as they are.
type Observation struct {
	WindowStart string    // raw window start
	WindowEnd   string    // raw window end
	Gains       [3]string // gain fields in band order
	Points      []string  // point tokens, may be terminated by empty fields

	fields  []string
	gainCol int
}

// SetGains replaces the gain fields with codes, in band order.
func (o *Observation) SetGains(codes [3]aster.GainCode) {
	for i, c := range codes {
		o.Gains[i] = c.Field()
	}
}

// Fields returns the record fields with the current gains, the field count is unchanged.
func (o *Observation) Fields() []string {
	out := make([]string, len(o.fields))
	copy(out, o.fields)
	copy(out[o.gainCol:], o.Gains[:])
	return out
}
