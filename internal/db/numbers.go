package db

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedRecord is re-exported by internal/errors; it lives here so the record
// model has no upward dependency.
var ErrMalformedRecord = errors.New("malformed record")

var errNotInteger = errors.New("not an integer")

// ParseInt accepts integer text and integer-valued decimal text such as "3.0".
func ParseInt(text string) (int, error) {
	text = strings.TrimSpace(text)
	if n, err := strconv.Atoi(text); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, errNotInteger
	}
	return int(f), nil
}
