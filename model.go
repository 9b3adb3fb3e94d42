package hbkit

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/challenai/hbkit/codec"
)

// TagHint is the struct tag holding "family,qualifier" of a mapped field.
const TagHint = "hbkit"

// Mapper converts tagged structs into mutations and results back into structs.
//
//	type User struct {
//		Name string `hbkit:"info,name"`
//		Age  int    `hbkit:"info,age"`
//	}
type Mapper struct {
	cdc     codec.Codec
	schemas sync.Map // reflect.Type -> *schema
}

// schema caches the column of every mapped field, so that we don't need to parse the tags everytime.
type schema struct {
	col2field map[string]int
	field2col map[int]Column
}

// NewMapper builds a mapper, a nil codec means codec.DefaultCodec.
func NewMapper(c codec.Codec) *Mapper {
	if c == nil {
		c = &codec.DefaultCodec{}
	}
	return &Mapper{cdc: c}
}

func (m *Mapper) schemaOf(t reflect.Type) (*schema, error) {
	if s, ok := m.schemas.Load(t); ok {
		return s.(*schema), nil
	}
	s := &schema{col2field: map[string]int{}, field2col: map[int]Column{}}
	for i := 0; i < t.NumField(); i++ {
		tag, ok := t.Field(i).Tag.Lookup(TagHint)
		if !ok || tag == "-" || !t.Field(i).IsExported() {
			continue
		}
		parts := strings.Split(tag, ",")
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("field %s.%s: column doesn't have column family or qualifier", t.Name(), t.Field(i).Name)
		}
		col := Col(parts[0], parts[1])
		s.field2col[i] = col
		s.col2field[col.String()] = i
	}
	m.schemas.Store(t, s)
	return s, nil
}

func structValue(v interface{}) (reflect.Value, error) {
	if v == nil {
		return reflect.Value{}, fmt.Errorf("can't map a nil model")
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("can't map a nil model")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("model should be a struct, got %s", rv.Kind())
	}
	return rv, nil
}

// Mutation encodes every tagged field of v as a cell of row.
func (m *Mapper) Mutation(row []byte, v interface{}) (*RowMutation, error) {
	rv, err := structValue(v)
	if err != nil {
		return nil, wrap(ErrMutation, "map", "", err)
	}
	s, err := m.schemaOf(rv.Type())
	if err != nil {
		return nil, wrap(ErrMutation, "map", "", err)
	}
	put := NewPut(row)
	for i := 0; i < rv.NumField(); i++ {
		col, ok := s.field2col[i]
		if !ok {
			continue
		}
		value, err := m.encode(rv.Field(i))
		if err != nil {
			return nil, wrap(ErrMutation, "map", "", fmt.Errorf("column %s: %w", col, err))
		}
		put.Add(string(col.Family), string(col.Qualifier), value)
	}
	return put, nil
}

func (m *Mapper) encode(field reflect.Value) ([]byte, error) {
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return m.cdc.EncodeInt(field.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return m.cdc.EncodeUint(field.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return m.cdc.EncodeFloat(field.Float()), nil
	case reflect.String:
		return m.cdc.EncodeString(field.String()), nil
	case reflect.Bool:
		return m.cdc.EncodeBool(field.Bool()), nil
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.Uint8 {
			return append([]byte{}, field.Bytes()...), nil
		}
	}
	return nil, fmt.Errorf("unsupported field type %s", field.Type())
}

// Decode fills the tagged fields of dst, a struct pointer, from r. Fields
// whose column is absent are left untouched.
func (m *Mapper) Decode(r *RowResult, dst interface{}) error {
	if r == nil || r.NotFound {
		return fmt.Errorf("decode: row not found")
	}
	if reflect.TypeOf(dst) == nil || reflect.TypeOf(dst).Kind() != reflect.Ptr {
		return fmt.Errorf("decode: destination should be a struct pointer")
	}
	rv, err := structValue(dst)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	s, err := m.schemaOf(rv.Type())
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	for _, c := range r.Cells {
		idx, ok := s.col2field[fmt.Sprintf("%s:%s", c.Family, c.Qualifier)]
		if !ok {
			continue
		}
		if err := m.decode(rv.Field(idx), c.Value); err != nil {
			return fmt.Errorf("decode column %s:%s: %w", c.Family, c.Qualifier, err)
		}
	}
	return nil
}

func (m *Mapper) decode(field reflect.Value, value []byte) error {
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := m.cdc.DecodeInt(value)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := m.cdc.DecodeUint(value)
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := m.cdc.DecodeFloat(value)
		if err != nil {
			return err
		}
		field.SetFloat(n)
	case reflect.String:
		s, err := m.cdc.DecodeString(value)
		if err != nil {
			return err
		}
		field.SetString(s)
	case reflect.Bool:
		b, err := m.cdc.DecodeBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.Uint8 {
			return fmt.Errorf("unsupported field type %s", field.Type())
		}
		field.SetBytes(append([]byte{}, value...))
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}
