package utils

import (
	"bytes"
)

// ClosestRowAfter is the smallest row key sorting strictly after row.
func ClosestRowAfter(row []byte) []byte {
	next := make([]byte, len(row)+1)
	copy(next, row)
	return next
}

// PrefixStopRow is the exclusive upper bound of the rows starting with prefix,
// nil when no such bound exists (empty prefix or all 0xff bytes).
func PrefixStopRow(prefix []byte) []byte {
	stop := bytes.Clone(prefix)
	for i := len(stop) - 1; i >= 0; i-- {
		if stop[i] < 0xff {
			stop[i]++
			return stop[:i+1]
		}
	}
	return nil
}

// InRange reports whether row lies in [start, stop), nil bounds are open.
func InRange(row, start, stop []byte) bool {
	if len(start) > 0 && bytes.Compare(row, start) < 0 {
		return false
	}
	if len(stop) > 0 && bytes.Compare(row, stop) >= 0 {
		return false
	}
	return true
}
