// Package memstore is an in-process stand-in for a column-family store
// cluster. It keeps the client visible contract of the real store (table
// states, family checks, cell versions, server side column filtering and
// scanner contexts) without persistence or replication. It is meant for tests
// and local runs, registered as the "memory" driver.
package memstore

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/btree"

	"github.com/challenai/hbkit"
)

const btreeDegree = 32

func init() {
	hbkit.Register("memory", registry)
}

var registry = &clusters{all: map[string]*Cluster{}}

// clusters hands out one Cluster per quorum so that every Open with the same
// config sees the same tables.
type clusters struct {
	mu  sync.Mutex
	all map[string]*Cluster
}

func (r *clusters) Open(ctx context.Context, cfg *hbkit.Config) (hbkit.Session, error) {
	key := cfg.GatewayURL()
	if cfg.Gateway == "" {
		key = strings.Join(cfg.Addrs(), ",")
	}
	r.mu.Lock()
	c, ok := r.all[key]
	if !ok {
		c = New()
		r.all[key] = c
	}
	r.mu.Unlock()
	return c.Open(ctx, cfg)
}

// Cluster holds the tables of one simulated cluster.
type Cluster struct {
	mu          sync.Mutex
	tables      map[string]*table
	scanners    map[int64]*scanner
	nextScanner int64
	now         func() int64
	unreachable bool
}

// Option customizes a Cluster.
type Option func(*Cluster)

// WithClock replaces the millisecond clock used to stamp cells written without timestamp.
func WithClock(now func() int64) Option {
	return func(c *Cluster) { c.now = now }
}

// New returns an empty cluster.
func New(opts ...Option) *Cluster {
	c := &Cluster{
		tables:   map[string]*table{},
		scanners: map[int64]*scanner{},
		now:      func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetReachable makes later Open calls succeed or fail with ErrConnectivity.
func (c *Cluster) SetReachable(ok bool) {
	c.mu.Lock()
	c.unreachable = !ok
	c.mu.Unlock()
}

// Tables lists table names in order.
func (c *Cluster) Tables() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenScanners is the number of scan contexts not closed yet.
func (c *Cluster) OpenScanners() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.scanners)
}

// Open implements hbkit.Driver.
func (c *Cluster) Open(ctx context.Context, cfg *hbkit.Config) (hbkit.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, hbkit.Errorf(hbkit.ErrConnectivity, "open: %v", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unreachable {
		return nil, hbkit.Errorf(hbkit.ErrConnectivity, "no quorum member of %v answers", cfg.Quorum)
	}
	return &session{c: c}, nil
}

type table struct {
	desc    hbkit.TableDescriptor
	enabled bool
	rows    *btree.BTreeG[*row]
}

func newTable(desc *hbkit.TableDescriptor) *table {
	d := hbkit.TableDescriptor{Name: desc.Name, Families: append([]hbkit.ColumnFamilyDescriptor(nil), desc.Families...)}
	return &table{
		desc:    d,
		enabled: true,
		rows: btree.NewG(btreeDegree, func(a, b *row) bool {
			return bytes.Compare(a.key, b.key) < 0
		}),
	}
}

func (t *table) maxVersions(family string) (int, bool) {
	f, ok := t.desc.Family(family)
	if !ok {
		return 0, false
	}
	if f.MaxVersions <= 0 {
		return 1, true
	}
	return f.MaxVersions, true
}

type row struct {
	key []byte
	// family -> qualifier -> versions, newest first
	cells map[string]map[string][]version
}

type version struct {
	ts    int64
	value []byte
}

func (r *row) empty() bool {
	for _, quals := range r.cells {
		if len(quals) > 0 {
			return false
		}
	}
	return true
}

// put stores a version, replacing one with the same timestamp, and keeps at most max versions.
func (r *row) put(family, qualifier string, v version, max int) {
	quals, ok := r.cells[family]
	if !ok {
		quals = map[string][]version{}
		r.cells[family] = quals
	}
	vs := quals[qualifier]
	i := sort.Search(len(vs), func(i int) bool { return vs[i].ts <= v.ts })
	if i < len(vs) && vs[i].ts == v.ts {
		vs[i] = v
	} else {
		vs = append(vs, version{})
		copy(vs[i+1:], vs[i:])
		vs[i] = v
	}
	if len(vs) > max {
		vs = vs[:max]
	}
	quals[qualifier] = vs
}

// result builds the visible cells of the row for the column selection, nil if none.
func (r *row) result(columns []hbkit.Column, asOf int64) *hbkit.RowResult {
	var cells []hbkit.Cell
	families := make([]string, 0, len(r.cells))
	for f := range r.cells {
		families = append(families, f)
	}
	sort.Strings(families)
	for _, f := range families {
		quals := r.cells[f]
		names := make([]string, 0, len(quals))
		for q := range quals {
			names = append(names, q)
		}
		sort.Strings(names)
		for _, q := range names {
			if !selected(columns, f, q) {
				continue
			}
			for _, v := range quals[q] {
				if asOf > 0 && v.ts > asOf {
					continue
				}
				cells = append(cells, hbkit.Cell{
					Family:    []byte(f),
					Qualifier: []byte(q),
					Value:     bytes.Clone(nonNil(v.value)),
					Timestamp: v.ts,
				})
				break
			}
		}
	}
	if len(cells) == 0 {
		return nil
	}
	return &hbkit.RowResult{Row: bytes.Clone(r.key), Cells: cells}
}

func selected(columns []hbkit.Column, family, qualifier string) bool {
	if len(columns) == 0 {
		return true
	}
	for _, c := range columns {
		if c.Matches([]byte(family), []byte(qualifier)) {
			return true
		}
	}
	return false
}

// nonNil keeps an empty value distinguishable from an absent one once cloned.
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

// lookup returns an enabled table or a table state error.
func (c *Cluster) lookup(name string) (*table, error) {
	t, ok := c.tables[name]
	if !ok {
		return nil, hbkit.Errorf(hbkit.ErrTableState, "TableNotFoundException: %s", name)
	}
	if !t.enabled {
		return nil, hbkit.Errorf(hbkit.ErrTableState, "TableNotEnabledException: %s is disabled", name)
	}
	return t, nil
}
