package hbkit

import (
	"context"
	"fmt"
	"time"
)

// Admin administers tables. It is lightweight, derive one whenever needed.
type Admin struct {
	conn   *Conn
	policy RecreatePolicy
}

// WithPolicy returns a copy of the admin that ensures tables with p.
func (a *Admin) WithPolicy(p RecreatePolicy) *Admin {
	return &Admin{conn: a.conn, policy: p}
}

// Policy is the recreate policy used by EnsureTable.
func (a *Admin) Policy() RecreatePolicy {
	return a.policy
}

// EnsureTable makes sure a table matching desc exists. With the default
// AlwaysRecreate policy an existing table is disabled, deleted and created
// again, so every row it held is lost.
func (a *Admin) EnsureTable(ctx context.Context, desc *TableDescriptor) (err error) {
	start := time.Now()
	defer func() { observe("ensure_table", start, err) }()

	if err := desc.Validate(); err != nil {
		return wrap(ErrAdmin, "ensure table", desc.name(), err)
	}
	if err := a.conn.check("ensure table", desc.Name); err != nil {
		return err
	}
	ctx, cancel := a.conn.bound(ctx)
	defer cancel()

	switch a.policy {
	case AlwaysRecreate:
		return a.recreate(ctx, desc)
	case CreateIfAbsent:
		return a.createIfAbsent(ctx, desc)
	case FailIfMismatch:
		return a.failIfMismatch(ctx, desc)
	}
	return wrap(ErrAdmin, "ensure table", desc.Name, fmt.Errorf("unknown recreate policy %v", a.policy))
}

func (a *Admin) recreate(ctx context.Context, desc *TableDescriptor) error {
	exists, err := a.tableExists(ctx, desc.Name)
	if err != nil {
		return err
	}
	if exists {
		// disable - then delete
		if err := a.disableIfEnabled(ctx, desc.Name); err != nil {
			return err
		}
		if err := a.deleteTable(ctx, desc.Name); err != nil {
			return err
		}
	}
	if exists, err = a.tableExists(ctx, desc.Name); err != nil {
		return err
	}
	if exists {
		return wrap(ErrAdmin, "ensure table", desc.Name, fmt.Errorf("table reappeared after delete, concurrent administrator"))
	}
	return a.createTable(ctx, desc)
}

func (a *Admin) createIfAbsent(ctx context.Context, desc *TableDescriptor) error {
	exists, err := a.tableExists(ctx, desc.Name)
	if err != nil {
		return err
	}
	if !exists {
		return a.createTable(ctx, desc)
	}
	return a.enableIfDisabled(ctx, desc.Name)
}

func (a *Admin) failIfMismatch(ctx context.Context, desc *TableDescriptor) error {
	exists, err := a.tableExists(ctx, desc.Name)
	if err != nil {
		return err
	}
	if !exists {
		return a.createTable(ctx, desc)
	}
	current, err := a.describeTable(ctx, desc.Name)
	if err != nil {
		return err
	}
	if !current.Equal(desc) {
		return &Error{Kind: ErrAdmin, Op: "ensure table", Table: desc.Name, Err: ErrSchemaMismatch}
	}
	return a.enableIfDisabled(ctx, desc.Name)
}

func (a *Admin) disableIfEnabled(ctx context.Context, table string) error {
	enabled, err := a.conn.sess.TableEnabled(ctx, table)
	if err != nil {
		return wrap(ErrAdmin, "table enabled", table, err)
	}
	if !enabled {
		return nil
	}
	return a.disableTable(ctx, table)
}

func (a *Admin) enableIfDisabled(ctx context.Context, table string) error {
	enabled, err := a.conn.sess.TableEnabled(ctx, table)
	if err != nil {
		return wrap(ErrAdmin, "table enabled", table, err)
	}
	if enabled {
		return nil
	}
	return a.enableTable(ctx, table)
}

// TableExists reports whether the table is known to the cluster, enabled or not.
func (a *Admin) TableExists(ctx context.Context, table string) (bool, error) {
	if err := a.conn.check("table exists", table); err != nil {
		return false, err
	}
	ctx, cancel := a.conn.bound(ctx)
	defer cancel()
	return a.tableExists(ctx, table)
}

// TableEnabled reports whether the table accepts reads and writes.
func (a *Admin) TableEnabled(ctx context.Context, table string) (bool, error) {
	if err := a.conn.check("table enabled", table); err != nil {
		return false, err
	}
	ctx, cancel := a.conn.bound(ctx)
	defer cancel()
	enabled, err := a.conn.sess.TableEnabled(ctx, table)
	return enabled, wrap(ErrAdmin, "table enabled", table, err)
}

// DescribeTable returns the schema of an existing table.
func (a *Admin) DescribeTable(ctx context.Context, table string) (*TableDescriptor, error) {
	if err := a.conn.check("describe table", table); err != nil {
		return nil, err
	}
	ctx, cancel := a.conn.bound(ctx)
	defer cancel()
	return a.describeTable(ctx, table)
}

// CreateTable creates the table with every family in one call.
func (a *Admin) CreateTable(ctx context.Context, desc *TableDescriptor) error {
	if err := desc.Validate(); err != nil {
		return wrap(ErrAdmin, "create table", desc.name(), err)
	}
	if err := a.conn.check("create table", desc.Name); err != nil {
		return err
	}
	ctx, cancel := a.conn.bound(ctx)
	defer cancel()
	return a.createTable(ctx, desc)
}

// EnableTable brings a disabled table back online.
func (a *Admin) EnableTable(ctx context.Context, table string) error {
	if err := a.conn.check("enable table", table); err != nil {
		return err
	}
	ctx, cancel := a.conn.bound(ctx)
	defer cancel()
	return a.enableTable(ctx, table)
}

// DisableTable takes a table offline, a prerequisite of DeleteTable.
func (a *Admin) DisableTable(ctx context.Context, table string) error {
	if err := a.conn.check("disable table", table); err != nil {
		return err
	}
	ctx, cancel := a.conn.bound(ctx)
	defer cancel()
	return a.disableTable(ctx, table)
}

// DeleteTable drops a disabled table, an enabled one fails with ErrTableState.
func (a *Admin) DeleteTable(ctx context.Context, table string) error {
	if err := a.conn.check("delete table", table); err != nil {
		return err
	}
	ctx, cancel := a.conn.bound(ctx)
	defer cancel()
	return a.deleteTable(ctx, table)
}

func (a *Admin) tableExists(ctx context.Context, table string) (exists bool, err error) {
	start := time.Now()
	defer func() { observe("table_exists", start, err) }()
	exists, err = a.conn.sess.TableExists(ctx, table)
	return exists, wrap(ErrAdmin, "table exists", table, err)
}

func (a *Admin) describeTable(ctx context.Context, table string) (desc *TableDescriptor, err error) {
	start := time.Now()
	defer func() { observe("describe_table", start, err) }()
	desc, err = a.conn.sess.DescribeTable(ctx, table)
	if err != nil {
		return nil, wrap(ErrAdmin, "describe table", table, err)
	}
	return desc, nil
}

func (a *Admin) createTable(ctx context.Context, desc *TableDescriptor) (err error) {
	start := time.Now()
	defer func() { observe("create_table", start, err) }()
	if err = a.conn.sess.CreateTable(ctx, desc); err != nil {
		return wrap(ErrAdmin, "create table", desc.Name, err)
	}
	a.conn.log.Info("table created", "table", desc.Name, "families", len(desc.Families))
	return nil
}

func (a *Admin) enableTable(ctx context.Context, table string) (err error) {
	start := time.Now()
	defer func() { observe("enable_table", start, err) }()
	if err = a.conn.sess.EnableTable(ctx, table); err != nil {
		return wrap(ErrAdmin, "enable table", table, err)
	}
	a.conn.log.Info("table enabled", "table", table)
	return nil
}

func (a *Admin) disableTable(ctx context.Context, table string) (err error) {
	start := time.Now()
	defer func() { observe("disable_table", start, err) }()
	if err = a.conn.sess.DisableTable(ctx, table); err != nil {
		return wrap(ErrAdmin, "disable table", table, err)
	}
	a.conn.log.Info("table disabled", "table", table)
	return nil
}

func (a *Admin) deleteTable(ctx context.Context, table string) (err error) {
	start := time.Now()
	defer func() { observe("delete_table", start, err) }()
	if err = a.conn.sess.DeleteTable(ctx, table); err != nil {
		return wrap(ErrAdmin, "delete table", table, err)
	}
	a.conn.log.Info("table deleted", "table", table)
	return nil
}

func (d *TableDescriptor) name() string {
	if d == nil {
		return ""
	}
	return d.Name
}
