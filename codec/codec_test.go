package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCodecNumbers(t *testing.T) {
	c := &DefaultCodec{}

	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 0}, c.EncodeInt(256))
	n, err := c.DecodeInt(c.EncodeInt(-42))
	require.NoError(t, err)
	assert.Equal(t, int64(-42), n)

	u, err := c.DecodeUint(c.EncodeUint(math.MaxUint64))
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), u)

	f, err := c.DecodeFloat(c.EncodeFloat(3.25))
	require.NoError(t, err)
	assert.Equal(t, 3.25, f)
}

func TestDefaultCodecRejectsShortValues(t *testing.T) {
	c := &DefaultCodec{}
	_, err := c.DecodeInt([]byte{1, 2})
	assert.Error(t, err)
	_, err = c.DecodeUint(nil)
	assert.Error(t, err)
	_, err = c.DecodeFloat(make([]byte, 9))
	assert.Error(t, err)
	_, err = c.DecodeBool([]byte{})
	assert.Error(t, err)
}

func TestDefaultCodecBool(t *testing.T) {
	c := &DefaultCodec{}
	assert.Equal(t, []byte{0xff}, c.EncodeBool(true))
	b, err := c.DecodeBool([]byte{1})
	require.NoError(t, err)
	assert.True(t, b)
	b, err = c.DecodeBool(c.EncodeBool(false))
	require.NoError(t, err)
	assert.False(t, b)

	s, err := c.DecodeString(c.EncodeString("Some Value"))
	require.NoError(t, err)
	assert.Equal(t, "Some Value", s)
}
