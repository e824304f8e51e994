package glims

import (
	"bufio"
	"io"
	"strings"
)

// LineTerminator is the default record terminator of the Writer.
const LineTerminator = "\r\n"

// Writer writes records to a STAR file.
// Fields are quoted only if they contain a delimiter, a quote or a line break.
type Writer struct {
	// LineTerminator ends every record, defaults to "\r\n".
	LineTerminator string

	w *bufio.Writer
}

// NewWriter returns a new Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{LineTerminator: LineTerminator, w: bufio.NewWriter(w)}
}

// Write writes a single record and flushes it to the underlying writer,
// so the output always ends with a complete record.
func (w *Writer) Write(fields []string) error {
	// A record consisting of one empty field would be read back as an empty line.
	if len(fields) == 1 && fields[0] == "" {
		if _, err := w.w.WriteString(string(Quote) + string(Quote) + w.LineTerminator); err != nil {
			return err
		}
		return w.w.Flush()
	}

	for i, field := range fields {
		if i > 0 {
			if err := w.w.WriteByte(Delimiter); err != nil {
				return err
			}
		}
		if err := w.writeField(field); err != nil {
			return err
		}
	}
	if _, err := w.w.WriteString(w.LineTerminator); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) writeField(field string) error {
	if !fieldNeedsQuotes(field) {
		_, err := w.w.WriteString(field)
		return err
	}

	quote := string(Quote)
	_, err := w.w.WriteString(quote + strings.ReplaceAll(field, quote, quote+quote) + quote)
	return err
}

func fieldNeedsQuotes(field string) bool {
	return strings.ContainsAny(field, string([]rune{Delimiter, Quote, '\r', '\n'}))
}
