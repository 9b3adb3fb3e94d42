package hbkit

import (
	"context"
	"io"
	"time"

	"github.com/challenai/hbkit/utils"
)

// Scan opens a forward only cursor over the rows selected by spec. The
// cursor holds a server side scan context until it is closed.
func (t *Table) Scan(ctx context.Context, spec *ScanSpec) (cur *Cursor, err error) {
	start := time.Now()
	defer func() { observe("open_scanner", start, err) }()

	if err := t.check("scan"); err != nil {
		return nil, err
	}
	s := normalizeScan(spec, t.conn.cfg.scanCaching())
	ctx, cancel := t.conn.bound(ctx)
	defer cancel()
	sc, err := t.conn.sess.OpenScanner(ctx, t.name, s)
	if err != nil {
		return nil, wrap(nil, "scan", t.name, err)
	}
	cur = &Cursor{table: t, sc: sc, caching: s.Caching, limit: s.Limit}
	if t.cursors == nil {
		t.cursors = map[*Cursor]struct{}{}
	}
	t.cursors[cur] = struct{}{}
	return cur, nil
}

// normalizeScan resolves the prefix and caching of a copy of spec.
func normalizeScan(spec *ScanSpec, caching int) *ScanSpec {
	s := ScanSpec{}
	if spec != nil {
		s = *spec
	}
	if len(s.Prefix) > 0 {
		s.StartRow = s.Prefix
		s.StopRow = utils.PrefixStopRow(s.Prefix)
		s.Prefix = nil
	}
	if s.Caching <= 0 {
		s.Caching = caching
	}
	if s.Limit > 0 && s.Limit < s.Caching {
		s.Caching = s.Limit
	}
	return &s
}

// Cursor iterates the rows of a scan. It is single pass and must not be
// shared between goroutines.
type Cursor struct {
	table   *Table
	sc      Scanner
	caching int
	limit   int
	buf     []*RowResult
	seen    int
	done    bool
	closed  bool
}

// Next returns the next row, or io.EOF once the scan is exhausted. Calling
// Next again after io.EOF keeps returning io.EOF.
func (c *Cursor) Next(ctx context.Context) (*RowResult, error) {
	if c.closed {
		return nil, &Error{Kind: ErrUseAfterClose, Op: "next", Table: c.table.name}
	}
	if err := c.table.conn.check("next", c.table.name); err != nil {
		return nil, err
	}
	if len(c.buf) == 0 && !c.done {
		if err := c.fetch(ctx); err != nil {
			return nil, err
		}
	}
	if len(c.buf) == 0 {
		return nil, io.EOF
	}
	r := c.buf[0]
	c.buf[0] = nil
	c.buf = c.buf[1:]
	c.seen++
	if c.limit > 0 && c.seen >= c.limit {
		c.done = true
		c.buf = nil
	}
	return r, nil
}

func (c *Cursor) fetch(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { observe("scanner_next", start, err) }()

	n := c.caching
	if c.limit > 0 && c.limit-c.seen < n {
		n = c.limit - c.seen
	}
	ctx, cancel := c.table.conn.bound(ctx)
	defer cancel()
	rows, err := c.sc.Next(ctx, n)
	if err != nil {
		return wrap(nil, "next", c.table.name, err)
	}
	if len(rows) == 0 {
		c.done = true
		return nil
	}
	c.buf = rows
	return nil
}

// Close releases the server side scan context. Closing twice is a no-op.
func (c *Cursor) Close(ctx context.Context) (err error) {
	if c.closed {
		return nil
	}
	c.closed = true
	c.buf = nil
	delete(c.table.cursors, c)
	start := time.Now()
	defer func() { observe("close_scanner", start, err) }()
	ctx, cancel := c.table.conn.bound(ctx)
	defer cancel()
	return wrap(nil, "close scanner", c.table.name, c.sc.Close(ctx))
}

// All drains the cursor into a slice. The cursor is left exhausted but open.
func (c *Cursor) All(ctx context.Context) ([]*RowResult, error) {
	var rows []*RowResult
	for {
		r, err := c.Next(ctx)
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, r)
	}
}
