package hbkit

import (
	"bytes"
	"fmt"
)

// ColumnFamilyDescriptor describes one column family of a table.
type ColumnFamilyDescriptor struct {
	Name string
	// MaxVersions is the number of cell versions retained, 0 means the store default.
	MaxVersions int
	// InMemory asks the store to keep the family resident in memory.
	InMemory bool
}

// TableDescriptor is a table name plus its ordered column families.
type TableDescriptor struct {
	Name     string
	Families []ColumnFamilyDescriptor
}

// NewTableDescriptor builds a descriptor, families may be appended with AddFamily.
func NewTableDescriptor(name string, families ...ColumnFamilyDescriptor) *TableDescriptor {
	return &TableDescriptor{Name: name, Families: families}
}

// AddFamily appends a column family and returns the descriptor for chaining.
func (d *TableDescriptor) AddFamily(f ColumnFamilyDescriptor) *TableDescriptor {
	d.Families = append(d.Families, f)
	return d
}

// Family returns the named family descriptor.
func (d *TableDescriptor) Family(name string) (ColumnFamilyDescriptor, bool) {
	for _, f := range d.Families {
		if f.Name == name {
			return f, true
		}
	}
	return ColumnFamilyDescriptor{}, false
}

// Validate checks the descriptor can be created in one call.
func (d *TableDescriptor) Validate() error {
	if d == nil || d.Name == "" {
		return fmt.Errorf("table descriptor has no name")
	}
	if len(d.Families) == 0 {
		return fmt.Errorf("table %s has no column family", d.Name)
	}
	seen := make(map[string]struct{}, len(d.Families))
	for _, f := range d.Families {
		if f.Name == "" {
			return fmt.Errorf("table %s has a column family without name", d.Name)
		}
		if f.MaxVersions < 0 {
			return fmt.Errorf("column family %s:%s has negative max versions", d.Name, f.Name)
		}
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("table %s declares column family %s twice", d.Name, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// Equal reports whether both descriptors declare the same name and families, order ignored.
// A zero MaxVersions compares equal to the store default of 1.
func (d *TableDescriptor) Equal(o *TableDescriptor) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Name != o.Name || len(d.Families) != len(o.Families) {
		return false
	}
	for _, f := range d.Families {
		g, ok := o.Family(f.Name)
		if !ok || f.versions() != g.versions() || f.InMemory != g.InMemory {
			return false
		}
	}
	return true
}

func (f ColumnFamilyDescriptor) versions() int {
	if f.MaxVersions == 0 {
		return 1
	}
	return f.MaxVersions
}

// Column picks a column to read, a nil Qualifier selects the whole family.
type Column struct {
	Family    []byte
	Qualifier []byte
}

// Col is a shorthand for string family and qualifier names.
func Col(family, qualifier string) Column {
	return Column{Family: []byte(family), Qualifier: []byte(qualifier)}
}

// FamilyCol selects every qualifier of a family.
func FamilyCol(family string) Column {
	return Column{Family: []byte(family)}
}

// String renders the column as family:qualifier.
func (c Column) String() string {
	return fmt.Sprintf("%s:%s", c.Family, c.Qualifier)
}

// Matches reports whether a cell falls into this column selection.
func (c Column) Matches(family, qualifier []byte) bool {
	if !bytes.Equal(c.Family, family) {
		return false
	}
	return c.Qualifier == nil || bytes.Equal(c.Qualifier, qualifier)
}

// Cell is one versioned value of a column.
type Cell struct {
	Family    []byte
	Qualifier []byte
	Value     []byte
	// Timestamp in milliseconds, 0 on a mutation lets the store assign the apply time.
	Timestamp int64
}

// RowMutation is a set of cell writes applied atomically to one row.
type RowMutation struct {
	Row   []byte
	Cells []Cell
}

// NewPut starts a mutation on row.
func NewPut(row []byte) *RowMutation {
	return &RowMutation{Row: row}
}

// Add sets family:qualifier to value with a store assigned timestamp.
func (m *RowMutation) Add(family, qualifier string, value []byte) *RowMutation {
	return m.AddWithTimestamp(family, qualifier, value, 0)
}

// AddWithTimestamp sets family:qualifier to value at an explicit timestamp.
func (m *RowMutation) AddWithTimestamp(family, qualifier string, value []byte, ts int64) *RowMutation {
	m.Cells = append(m.Cells, Cell{
		Family:    []byte(family),
		Qualifier: []byte(qualifier),
		Value:     value,
		Timestamp: ts,
	})
	return m
}

// Get is a point lookup.
type Get struct {
	Row     []byte
	Columns []Column
	// AsOf restricts the read to versions with timestamp <= AsOf, 0 reads the latest.
	AsOf int64
}

// NewGet builds a lookup of row restricted to columns, none means every column.
func NewGet(row []byte, columns ...Column) *Get {
	return &Get{Row: row, Columns: columns}
}

// RowResult holds the latest visible value of each returned column of a row.
type RowResult struct {
	Row   []byte
	Cells []Cell
	// NotFound is set when the row has no visible cell at all, whatever the
	// column filter selected.
	NotFound bool
}

// Value returns the cell value for family:qualifier. ok is false when the
// column is absent, an empty value written by a client is returned with ok true.
func (r *RowResult) Value(family, qualifier string) (value []byte, ok bool) {
	if r == nil {
		return nil, false
	}
	for _, c := range r.Cells {
		if string(c.Family) == family && string(c.Qualifier) == qualifier {
			return c.Value, true
		}
	}
	return nil, false
}

// String renders the row the way the store shell prints it.
func (r *RowResult) String() string {
	if r == nil || r.NotFound {
		return "keyvalues=NONE"
	}
	var b bytes.Buffer
	b.WriteString("keyvalues={")
	for i, c := range r.Cells {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s/%s:%s/%d/Put/vlen=%d", r.Row, c.Family, c.Qualifier, c.Timestamp, len(c.Value))
	}
	b.WriteString("}")
	return b.String()
}

// ScanSpec selects the rows and columns a Cursor walks over.
type ScanSpec struct {
	// StartRow is inclusive, StopRow exclusive, nil means unbounded.
	StartRow []byte
	StopRow  []byte
	// Prefix overrides StartRow and StopRow with the range covering every row starting with it.
	Prefix  []byte
	Columns []Column
	AsOf    int64
	// Caching is the number of rows fetched per round trip, 0 uses Config.ScanCaching.
	Caching int
	// Limit caps the number of rows returned, 0 means no limit.
	Limit int
}

// AddColumn restricts the scan to family:qualifier.
func (s *ScanSpec) AddColumn(family, qualifier string) *ScanSpec {
	s.Columns = append(s.Columns, Col(family, qualifier))
	return s
}

// RecreatePolicy decides what EnsureTable does with a table that already exists.
type RecreatePolicy int

const (
	// AlwaysRecreate disables, deletes and recreates an existing table, its data is lost.
	AlwaysRecreate RecreatePolicy = iota
	// CreateIfAbsent keeps an existing table untouched.
	CreateIfAbsent
	// FailIfMismatch keeps an existing table only if its schema equals the descriptor.
	FailIfMismatch
)

func (p RecreatePolicy) String() string {
	switch p {
	case AlwaysRecreate:
		return "always-recreate"
	case CreateIfAbsent:
		return "create-if-absent"
	case FailIfMismatch:
		return "fail-if-mismatch"
	}
	return fmt.Sprintf("RecreatePolicy(%d)", int(p))
}

// ParseRecreatePolicy reads the recreate-policy config key, empty means
// AlwaysRecreate.
func ParseRecreatePolicy(s string) (RecreatePolicy, error) {
	switch s {
	case "", "always-recreate":
		return AlwaysRecreate, nil
	case "create-if-absent":
		return CreateIfAbsent, nil
	case "fail-if-mismatch":
		return FailIfMismatch, nil
	}
	return 0, fmt.Errorf("unknown recreate policy %q", s)
}
