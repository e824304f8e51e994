package glims

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bruceraup/glims-aster-gains/pkg/aster"
)

// parser states
const (
	startRecord = iota
	startField
	inField
	inQuotedField
	quoteInQuotedField
)

// Reader reads records from a STAR file.
//
// Quotes are recognized at the beginning of a field only. Inside a quoted field a doubled quote
// stands for a literal quote, delimiters and line breaks are kept. A quote followed by anything
// else than a delimiter, quote or line end is taken literally. Both "\n" and "\r\n" end a record.
type Reader struct {
	rd      *bufio.Reader
	rec     Record
	lineNum int
	err     error
}

// NewReader returns a new Reader that reads from r.
//
// It is the caller's responsibility to call Close on the underlying reader when done!
func NewReader(r io.Reader) *Reader {
	return &Reader{rd: bufio.NewReader(r)}
}

// Next reads the next record. It returns false at the end of the input or on an error.
// Use Record() to get the record and Err() to check for errors.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	rec, err := r.readRecord()
	if err != nil {
		r.err = err
		return false
	}
	r.rec = rec
	return true
}

// Record returns the most recent record read by Next.
func (r *Reader) Record() Record {
	return r.rec
}

// Err returns the first non-EOF error that was encountered by the Reader.
func (r *Reader) Err() error {
	if r.err == io.EOF {
		return nil
	}
	return r.err
}

// ReadAll reads all remaining records.
func (r *Reader) ReadAll() ([]Record, error) {
	var recs []Record
	for r.Next() {
		recs = append(recs, r.Record())
	}
	return recs, r.Err()
}

func (r *Reader) readRecord() (Record, error) {
	var (
		fields []string
		field  strings.Builder
		state  = startRecord
	)

	endField := func() {
		fields = append(fields, field.String())
		field.Reset()
	}

	for {
		c, _, err := r.rd.ReadRune()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return Record{}, err
			}
			switch state {
			case startRecord:
				return Record{}, io.EOF
			case inQuotedField:
				return Record{}, fmt.Errorf("%w: line %d: unexpected end of file in quoted field", aster.ErrParse, r.lineNum+1)
			}
			// last line without line break
			endField()
			r.lineNum++
			return Record{Fields: fields, Line: r.lineNum}, nil
		}

		if c == '\r' {
			// a "\r\n" counts as one line break
			if next, err := r.rd.Peek(1); err == nil && next[0] == '\n' {
				continue
			}
			c = '\n'
		}

		switch state {
		case startRecord:
			if c == '\n' {
				r.lineNum++
				return Record{Fields: []string{}, Line: r.lineNum}, nil
			}
			state = startField
			fallthrough
		case startField:
			switch c {
			case Quote:
				state = inQuotedField
			case Delimiter:
				endField()
			case '\n':
				endField()
				r.lineNum++
				return Record{Fields: fields, Line: r.lineNum}, nil
			default:
				field.WriteRune(c)
				state = inField
			}
		case inField:
			switch c {
			case Delimiter:
				endField()
				state = startField
			case '\n':
				endField()
				r.lineNum++
				return Record{Fields: fields, Line: r.lineNum}, nil
			default:
				field.WriteRune(c)
			}
		case inQuotedField:
			switch c {
			case Quote:
				state = quoteInQuotedField
			case '\n':
				r.lineNum++
				field.WriteRune(c)
			default:
				field.WriteRune(c)
			}
		case quoteInQuotedField:
			switch c {
			case Quote:
				field.WriteRune(c)
				state = inQuotedField
			case Delimiter:
				endField()
				state = startField
			case '\n':
				endField()
				r.lineNum++
				return Record{Fields: fields, Line: r.lineNum}, nil
			default:
				field.WriteRune(c)
				state = inField
			}
		}
	}
}
