package hbkit

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestDescriptorEqual(t *testing.T) {
	a := NewTableDescriptor("T",
		ColumnFamilyDescriptor{Name: "F", MaxVersions: 100, InMemory: true},
		ColumnFamilyDescriptor{Name: "G"})
	b := NewTableDescriptor("T",
		ColumnFamilyDescriptor{Name: "G", MaxVersions: 1},
		ColumnFamilyDescriptor{Name: "F", MaxVersions: 100, InMemory: true})
	assert.True(t, a.Equal(b))

	b.Families[1].InMemory = false
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(NewTableDescriptor("U", a.Families...)))
	assert.False(t, a.Equal(nil))
}

func TestRowResultString(t *testing.T) {
	r := &RowResult{Row: []byte("r1"), Cells: []Cell{{Family: []byte("F"), Qualifier: []byte("q"), Value: []byte("abc"), Timestamp: 9}}}
	assert.Equal(t, "keyvalues={r1/F:q/9/Put/vlen=3}", r.String())
	assert.Equal(t, "keyvalues=NONE", (&RowResult{NotFound: true}).String())
}

func TestColumnMatches(t *testing.T) {
	assert.True(t, Col("F", "q").Matches([]byte("F"), []byte("q")))
	assert.False(t, Col("F", "q").Matches([]byte("F"), []byte("r")))
	assert.True(t, FamilyCol("F").Matches([]byte("F"), []byte("anything")))
	assert.False(t, FamilyCol("F").Matches([]byte("G"), []byte("q")))
}

func TestParseRecreatePolicy(t *testing.T) {
	for _, p := range []RecreatePolicy{AlwaysRecreate, CreateIfAbsent, FailIfMismatch} {
		got, err := ParseRecreatePolicy(p.String())
		assert.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParseRecreatePolicy("sometimes")
	assert.Error(t, err)
}

func TestErrorWrapping(t *testing.T) {
	err := wrap(ErrAdmin, "create table", "T", context.DeadlineExceeded)
	assert.True(t, errors.Is(err, ErrAdmin))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, "create table T: admin operation failed: context deadline exceeded", err.Error())

	classified := Errorf(ErrTableState, "TableNotDisabledException: %s", "T")
	err = wrap(ErrAdmin, "delete table", "T", classified)
	assert.True(t, errors.Is(err, ErrTableState))
	assert.False(t, errors.Is(err, ErrAdmin))

	outer := wrap(ErrAdmin, "ensure table", "T", err)
	assert.Equal(t, err, outer)

	assert.Nil(t, wrap(ErrAdmin, "op", "", nil))
	assert.Nil(t, KindOf(fmt.Errorf("plain")))
}
