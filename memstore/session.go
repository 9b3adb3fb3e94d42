package memstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/challenai/hbkit"
	"github.com/challenai/hbkit/utils"
)

type session struct {
	c      *Cluster
	closed bool
}

// begin checks the session and context and takes the cluster lock. The
// caller must unlock c.mu when err is nil.
func (s *session) begin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.c.mu.Lock()
	if s.closed {
		s.c.mu.Unlock()
		return hbkit.Errorf(hbkit.ErrUseAfterClose, "session closed")
	}
	return nil
}

func (s *session) TableExists(ctx context.Context, name string) (bool, error) {
	if err := s.begin(ctx); err != nil {
		return false, err
	}
	defer s.c.mu.Unlock()
	_, ok := s.c.tables[name]
	return ok, nil
}

func (s *session) TableEnabled(ctx context.Context, name string) (bool, error) {
	if err := s.begin(ctx); err != nil {
		return false, err
	}
	defer s.c.mu.Unlock()
	t, ok := s.c.tables[name]
	if !ok {
		return false, hbkit.Errorf(hbkit.ErrAdmin, "TableNotFoundException: %s", name)
	}
	return t.enabled, nil
}

func (s *session) DescribeTable(ctx context.Context, name string) (*hbkit.TableDescriptor, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.c.mu.Unlock()
	t, ok := s.c.tables[name]
	if !ok {
		return nil, hbkit.Errorf(hbkit.ErrAdmin, "TableNotFoundException: %s", name)
	}
	d := t.desc
	d.Families = append([]hbkit.ColumnFamilyDescriptor(nil), t.desc.Families...)
	return &d, nil
}

func (s *session) CreateTable(ctx context.Context, desc *hbkit.TableDescriptor) error {
	if err := desc.Validate(); err != nil {
		return hbkit.Errorf(hbkit.ErrAdmin, "IllegalArgumentException: %v", err)
	}
	if err := s.begin(ctx); err != nil {
		return err
	}
	defer s.c.mu.Unlock()
	if _, ok := s.c.tables[desc.Name]; ok {
		return hbkit.Errorf(hbkit.ErrAdmin, "TableExistsException: %s", desc.Name)
	}
	s.c.tables[desc.Name] = newTable(desc)
	return nil
}

func (s *session) EnableTable(ctx context.Context, name string) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	defer s.c.mu.Unlock()
	t, ok := s.c.tables[name]
	if !ok {
		return hbkit.Errorf(hbkit.ErrAdmin, "TableNotFoundException: %s", name)
	}
	if t.enabled {
		return hbkit.Errorf(hbkit.ErrTableState, "TableNotDisabledException: %s", name)
	}
	t.enabled = true
	return nil
}

func (s *session) DisableTable(ctx context.Context, name string) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	defer s.c.mu.Unlock()
	t, ok := s.c.tables[name]
	if !ok {
		return hbkit.Errorf(hbkit.ErrAdmin, "TableNotFoundException: %s", name)
	}
	if !t.enabled {
		return hbkit.Errorf(hbkit.ErrTableState, "TableNotEnabledException: %s", name)
	}
	t.enabled = false
	return nil
}

func (s *session) DeleteTable(ctx context.Context, name string) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	defer s.c.mu.Unlock()
	t, ok := s.c.tables[name]
	if !ok {
		return hbkit.Errorf(hbkit.ErrAdmin, "TableNotFoundException: %s", name)
	}
	if t.enabled {
		return hbkit.Errorf(hbkit.ErrTableState, "TableNotDisabledException: %s", name)
	}
	delete(s.c.tables, name)
	return nil
}

func (s *session) Put(ctx context.Context, name string, m *hbkit.RowMutation) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	defer s.c.mu.Unlock()
	t, err := s.c.lookup(name)
	if err != nil {
		return err
	}
	// every family is checked before the first cell lands, a row is all or nothing
	for _, cell := range m.Cells {
		if _, ok := t.desc.Family(string(cell.Family)); !ok {
			return hbkit.Errorf(hbkit.ErrMutation, "NoSuchColumnFamilyException: column family %s does not exist in table %s", cell.Family, name)
		}
	}
	r, ok := t.rows.Get(&row{key: m.Row})
	if !ok {
		r = &row{key: bytes.Clone(m.Row), cells: map[string]map[string][]version{}}
	}
	now := s.c.now()
	for _, cell := range m.Cells {
		ts := cell.Timestamp
		if ts == 0 {
			ts = now
		}
		max, _ := t.maxVersions(string(cell.Family))
		r.put(string(cell.Family), string(cell.Qualifier), version{ts: ts, value: bytes.Clone(nonNil(cell.Value))}, max)
	}
	t.rows.ReplaceOrInsert(r)
	return nil
}

func (s *session) Get(ctx context.Context, name string, g *hbkit.Get) (*hbkit.RowResult, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.c.mu.Unlock()
	t, err := s.c.lookup(name)
	if err != nil {
		return nil, err
	}
	r, ok := t.rows.Get(&row{key: g.Row})
	if !ok {
		return &hbkit.RowResult{Row: bytes.Clone(g.Row), NotFound: true}, nil
	}
	if res := r.result(g.Columns, g.AsOf); res != nil {
		return res, nil
	}
	// the row exists, none of the requested columns does
	if len(g.Columns) > 0 && r.result(nil, g.AsOf) != nil {
		return &hbkit.RowResult{Row: bytes.Clone(g.Row)}, nil
	}
	return &hbkit.RowResult{Row: bytes.Clone(g.Row), NotFound: true}, nil
}

func (s *session) Delete(ctx context.Context, name string, key []byte, columns []hbkit.Column) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	defer s.c.mu.Unlock()
	t, err := s.c.lookup(name)
	if err != nil {
		return err
	}
	for _, col := range columns {
		if _, ok := t.desc.Family(string(col.Family)); !ok {
			return hbkit.Errorf(hbkit.ErrMutation, "NoSuchColumnFamilyException: column family %s does not exist in table %s", col.Family, name)
		}
	}
	r, ok := t.rows.Get(&row{key: key})
	if !ok {
		return nil
	}
	if len(columns) == 0 {
		t.rows.Delete(r)
		return nil
	}
	for _, col := range columns {
		if col.Qualifier == nil {
			delete(r.cells, string(col.Family))
			continue
		}
		if quals, ok := r.cells[string(col.Family)]; ok {
			delete(quals, string(col.Qualifier))
		}
	}
	if r.empty() {
		t.rows.Delete(r)
	}
	return nil
}

func (s *session) OpenScanner(ctx context.Context, name string, spec *hbkit.ScanSpec) (hbkit.Scanner, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.c.mu.Unlock()
	t, err := s.c.lookup(name)
	if err != nil {
		return nil, err
	}
	for _, col := range spec.Columns {
		if _, ok := t.desc.Family(string(col.Family)); !ok {
			return nil, hbkit.Errorf(hbkit.ErrMutation, "NoSuchColumnFamilyException: column family %s does not exist in table %s", col.Family, name)
		}
	}
	start := spec.StartRow
	stop := spec.StopRow
	if len(spec.Prefix) > 0 {
		start, stop = spec.Prefix, utils.PrefixStopRow(spec.Prefix)
	}
	s.c.nextScanner++
	sc := &scanner{
		id:      s.c.nextScanner,
		c:       s.c,
		table:   name,
		next:    bytes.Clone(start),
		stop:    bytes.Clone(stop),
		columns: spec.Columns,
		asOf:    spec.AsOf,
	}
	s.c.scanners[sc.id] = sc
	return sc, nil
}

func (s *session) Close() error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.closed {
		return fmt.Errorf("session already closed")
	}
	s.closed = true
	return nil
}

// scanner is a server side scan context. It resumes from the row after the
// last one returned, so rows written behind it are never revisited.
type scanner struct {
	id      int64
	c       *Cluster
	table   string
	next    []byte
	stop    []byte
	columns []hbkit.Column
	asOf    int64
	done    bool
}

func (sc *scanner) Next(ctx context.Context, n int) ([]*hbkit.RowResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sc.c.mu.Lock()
	defer sc.c.mu.Unlock()
	if _, ok := sc.c.scanners[sc.id]; !ok {
		return nil, hbkit.Errorf(hbkit.ErrUseAfterClose, "UnknownScannerException: scanner %d", sc.id)
	}
	if sc.done || n <= 0 {
		return nil, nil
	}
	t, err := sc.c.lookup(sc.table)
	if err != nil {
		return nil, err
	}
	var rows []*hbkit.RowResult
	var last []byte
	t.rows.AscendGreaterOrEqual(&row{key: sc.next}, func(r *row) bool {
		if !utils.InRange(r.key, sc.next, sc.stop) {
			return false
		}
		last = r.key
		if res := r.result(sc.columns, sc.asOf); res != nil {
			rows = append(rows, res)
		}
		return len(rows) < n
	})
	if len(rows) < n {
		sc.done = true
	}
	if last != nil {
		sc.next = utils.ClosestRowAfter(last)
	}
	return rows, nil
}

func (sc *scanner) Close(ctx context.Context) error {
	sc.c.mu.Lock()
	defer sc.c.mu.Unlock()
	delete(sc.c.scanners, sc.id)
	return nil
}
