package hbkit

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/atomic"
)

// Conn is a long lived connection to a cluster. Create one per process and
// derive lightweight Admin and Table handles from it.
type Conn struct {
	cfg    *Config
	sess   Session
	log    *slog.Logger
	closed atomic.Bool
}

// Option customizes Open.
type Option func(*options)

type options struct {
	driver Driver
	log    *slog.Logger
}

// WithDriver bypasses the registry lookup of Config.Driver.
func WithDriver(d Driver) Option {
	return func(o *options) { o.driver = d }
}

// WithLogger sets the logger of the connection and every handle derived from it.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// Open connects to the cluster described by cfg.
func Open(ctx context.Context, cfg *Config, opts ...Option) (conn *Conn, err error) {
	start := time.Now()
	defer func() { observe("open", start, err) }()

	o := options{log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, wrap(ErrConnectivity, "open", "", err)
	}
	drv := o.driver
	if drv == nil {
		var ok bool
		if drv, ok = lookupDriver(cfg.Driver); !ok {
			return nil, wrap(ErrConnectivity, "open", "", Errorf(ErrConnectivity, "unknown driver %q (registered: %v)", cfg.Driver, Drivers()))
		}
	}

	c := &Conn{cfg: cfg, log: o.log}
	ctx, cancel := c.bound(ctx)
	defer cancel()
	sess, err := drv.Open(ctx, cfg)
	if err != nil {
		return nil, wrap(ErrConnectivity, "open", "", err)
	}
	c.sess = sess
	c.log.Debug("connection opened", "driver", cfg.Driver, "quorum", cfg.Quorum, "user", cfg.User)
	return c, nil
}

// Close releases the connection. Only the first call succeeds.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return &Error{Kind: ErrUseAfterClose, Op: "close"}
	}
	start := time.Now()
	err := wrap(ErrConnectivity, "close", "", c.sess.Close())
	observe("close", start, err)
	c.log.Debug("connection closed", "err", err)
	return err
}

// Admin returns a table administration handle.
func (c *Conn) Admin() (*Admin, error) {
	if c.closed.Load() {
		return nil, &Error{Kind: ErrUseAfterClose, Op: "admin"}
	}
	return &Admin{conn: c, policy: AlwaysRecreate}, nil
}

// Table returns a handle on the named table. The handle is not safe for
// concurrent use and should be closed after each unit of work.
func (c *Conn) Table(name string) (*Table, error) {
	if c.closed.Load() {
		return nil, &Error{Kind: ErrUseAfterClose, Op: "table", Table: name}
	}
	return &Table{conn: c, name: name}, nil
}

// Config returns the configuration the connection was opened with.
func (c *Conn) Config() *Config {
	return c.cfg
}

func (c *Conn) check(op, table string) error {
	if c.closed.Load() {
		return &Error{Kind: ErrUseAfterClose, Op: op, Table: table}
	}
	return nil
}

// bound applies Config.Timeout to contexts that carry no deadline.
func (c *Conn) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout.Duration <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.cfg.Timeout.Duration)
}
