package hbkit

import (
	"context"
	"fmt"
	"time"
)

// Table is a handle on one table. It is cheap to create, not safe for
// concurrent use, and must be closed after use.
type Table struct {
	conn    *Conn
	name    string
	closed  bool
	cursors map[*Cursor]struct{}
}

// Name of the table.
func (t *Table) Name() string {
	return t.name
}

// Put applies every cell of m to its row atomically. Writing the same
// mutation again overwrites the same cells, so retrying is safe.
func (t *Table) Put(ctx context.Context, m *RowMutation) (err error) {
	start := time.Now()
	defer func() { observe("put", start, err) }()

	if err := t.check("put"); err != nil {
		return err
	}
	if m == nil || len(m.Row) == 0 {
		return &Error{Kind: ErrMutation, Op: "put", Table: t.name, Err: fmt.Errorf("mutation has no row key")}
	}
	if len(m.Cells) == 0 {
		return &Error{Kind: ErrMutation, Op: "put", Table: t.name, Err: fmt.Errorf("mutation of row %q has no cell", m.Row)}
	}
	for _, c := range m.Cells {
		if len(c.Family) == 0 {
			return &Error{Kind: ErrMutation, Op: "put", Table: t.name, Err: fmt.Errorf("cell of row %q has no family", m.Row)}
		}
	}
	ctx, cancel := t.conn.bound(ctx)
	defer cancel()
	if err = t.conn.sess.Put(ctx, t.name, m); err != nil {
		t.conn.log.Debug("put failed", "table", t.name, "row", string(m.Row), "err", err)
		return wrap(nil, "put", t.name, err)
	}
	return nil
}

// Get looks up one row. A missing row is not an error, the result has
// NotFound set instead. A row that exists but has none of the requested
// columns comes back with no cells and NotFound unset.
func (t *Table) Get(ctx context.Context, g *Get) (res *RowResult, err error) {
	start := time.Now()
	defer func() { observe("get", start, err) }()

	if err := t.check("get"); err != nil {
		return nil, err
	}
	if g == nil || len(g.Row) == 0 {
		return nil, &Error{Op: "get", Table: t.name, Err: fmt.Errorf("get has no row key")}
	}
	ctx, cancel := t.conn.bound(ctx)
	defer cancel()
	res, err = t.conn.sess.Get(ctx, t.name, g)
	if err != nil {
		t.conn.log.Debug("get failed", "table", t.name, "row", string(g.Row), "err", err)
		return nil, wrap(nil, "get", t.name, err)
	}
	if res == nil {
		res = &RowResult{Row: g.Row, NotFound: true}
	}
	return res, nil
}

// Delete removes the given columns of row, or the whole row when none is given.
func (t *Table) Delete(ctx context.Context, row []byte, columns ...Column) (err error) {
	start := time.Now()
	defer func() { observe("delete", start, err) }()

	if err := t.check("delete"); err != nil {
		return err
	}
	if len(row) == 0 {
		return &Error{Kind: ErrMutation, Op: "delete", Table: t.name, Err: fmt.Errorf("delete has no row key")}
	}
	ctx, cancel := t.conn.bound(ctx)
	defer cancel()
	return wrap(nil, "delete", t.name, t.conn.sess.Delete(ctx, t.name, row, columns))
}

// Close releases the handle and every cursor still open on it.
func (t *Table) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	var first error
	for c := range t.cursors {
		if err := c.Close(context.Background()); err != nil && first == nil {
			first = err
		}
	}
	t.cursors = nil
	return first
}

func (t *Table) check(op string) error {
	if t.closed {
		return &Error{Kind: ErrUseAfterClose, Op: op, Table: t.name}
	}
	return t.conn.check(op, t.name)
}
