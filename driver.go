package hbkit

import (
	"context"
	"sort"
	"sync"
)

// Driver connects to a column-family store cluster. Drivers register
// themselves with Register from an init function.
type Driver interface {
	Open(ctx context.Context, cfg *Config) (Session, error)
}

// Session is the driver side of a Conn. Errors should be classified with
// Errorf so callers can tell table state, mutation and connectivity failures apart.
type Session interface {
	TableExists(ctx context.Context, table string) (bool, error)
	TableEnabled(ctx context.Context, table string) (bool, error)
	DescribeTable(ctx context.Context, table string) (*TableDescriptor, error)
	CreateTable(ctx context.Context, desc *TableDescriptor) error
	EnableTable(ctx context.Context, table string) error
	DisableTable(ctx context.Context, table string) error
	// DeleteTable must refuse an enabled table with ErrTableState.
	DeleteTable(ctx context.Context, table string) error

	Put(ctx context.Context, table string, m *RowMutation) error
	// Get sets NotFound only when the row has no visible cell, an existing row
	// without the requested columns gives an empty result.
	Get(ctx context.Context, table string, g *Get) (*RowResult, error)
	Delete(ctx context.Context, table string, row []byte, columns []Column) error
	// OpenScanner filters columns server side and skips rows without any of them.
	OpenScanner(ctx context.Context, table string, spec *ScanSpec) (Scanner, error)

	Close() error
}

// Scanner is a server side scan context.
type Scanner interface {
	// Next returns up to n rows, an empty slice once the scan is exhausted.
	Next(ctx context.Context, n int) ([]*RowResult, error)
	Close(ctx context.Context) error
}

var (
	driversMu sync.RWMutex
	drivers   = map[string]Driver{}
)

// Register makes a driver available under name. It panics on a nil driver or
// a duplicate name.
func Register(name string, d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if d == nil {
		panic("hbkit: Register driver is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("hbkit: Register called twice for driver " + name)
	}
	drivers[name] = d
}

// Drivers lists the registered driver names.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupDriver(name string) (Driver, bool) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	return d, ok
}
