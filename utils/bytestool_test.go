package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClosestRowAfter(t *testing.T) {
	row := []byte("row1")
	next := ClosestRowAfter(row)
	assert.Equal(t, []byte("row1\x00"), next)
	assert.Equal(t, []byte("row1"), row)
	assert.Equal(t, []byte{0}, ClosestRowAfter(nil))
}

func TestPrefixStopRow(t *testing.T) {
	cases := []struct {
		prefix []byte
		stop   []byte
	}{
		{[]byte("abc"), []byte("abd")},
		{[]byte{'a', 0xff}, []byte{'b'}},
		{[]byte{0xff, 0xff}, nil},
		{nil, nil},
	}
	for _, c := range cases {
		assert.Equal(t, c.stop, PrefixStopRow(c.prefix), "prefix %q", c.prefix)
	}
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange([]byte("b"), nil, nil))
	assert.True(t, InRange([]byte("b"), []byte("b"), []byte("c")))
	assert.False(t, InRange([]byte("c"), []byte("b"), []byte("c")))
	assert.False(t, InRange([]byte("a"), []byte("b"), nil))
	assert.True(t, InRange([]byte("zzz"), []byte("b"), nil))
}
