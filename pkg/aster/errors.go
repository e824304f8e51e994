package aster

import "errors"

// errors
var (
	// ErrParse is returned for malformed point tokens, date fields and gain service responses.
	ErrParse = errors.New("parse error")

	// ErrDomain is returned when a value is outside the range a mapping is defined for.
	ErrDomain = errors.New("value out of domain")

	// ErrTransport is returned when the gain service could not be reached or answered with an error.
	ErrTransport = errors.New("gain service transport error")

	// ErrStructure is returned when two datasets or a record do not have the expected shape.
	ErrStructure = errors.New("structural error")
)
