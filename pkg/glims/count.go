package glims

import (
	"bytes"
	"io"
)

// CountLines returns the number of newlines in r, like wc -l.
func CountLines(r io.Reader) (int, error) {
	buf := make([]byte, 32*1024)
	n := 0
	for {
		c, err := r.Read(buf)
		n += bytes.Count(buf[:c], []byte{'\n'})
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
	}
}
