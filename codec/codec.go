package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Codec turns Go scalars into cell values and back.
type Codec interface {
	EncodeInt(int64) []byte
	DecodeInt([]byte) (int64, error)
	EncodeFloat(float64) []byte
	DecodeFloat([]byte) (float64, error)
	EncodeBool(bool) []byte
	DecodeBool([]byte) (bool, error)
	EncodeString(string) []byte
	DecodeString([]byte) (string, error)
	EncodeUint(uint64) []byte
	DecodeUint([]byte) (uint64, error)
}

// DefaultCodec writes numbers the way the store's Bytes utility does: 8 bytes big endian,
// booleans as a single 0 or -1 byte.
type DefaultCodec struct{}

func (*DefaultCodec) EncodeInt(n int64) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(n))
}

func (*DefaultCodec) DecodeInt(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("failed to parse bytes to int, got %d bytes", len(b))
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func (*DefaultCodec) EncodeFloat(n float64) []byte {
	return binary.BigEndian.AppendUint64(nil, math.Float64bits(n))
}

func (*DefaultCodec) DecodeFloat(b []byte) (float64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("failed to parse bytes to float, got %d bytes", len(b))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

func (*DefaultCodec) EncodeBool(b bool) []byte {
	if b {
		return []byte{0xff}
	}
	return []byte{0}
}

// DecodeBool accepts any non zero byte as true.
func (*DefaultCodec) DecodeBool(b []byte) (bool, error) {
	if len(b) != 1 {
		return false, fmt.Errorf("failed to parse bytes to bool, invalid bool encoding")
	}
	return b[0] != 0, nil
}

func (*DefaultCodec) EncodeString(s string) []byte {
	return []byte(s)
}

func (*DefaultCodec) DecodeString(b []byte) (string, error) {
	return string(b), nil
}

func (*DefaultCodec) EncodeUint(n uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, n)
}

func (*DefaultCodec) DecodeUint(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("failed to parse bytes to uint, got %d bytes", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}
