// Package transfer copies local files into a distributed filesystem, replacing
// whatever the destination held.
package transfer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/challenai/hbkit"
)

// ErrTransfer is the kind of every failed copy.
var ErrTransfer = errors.New("file transfer failed")

// Error is returned by the client operations.
type Error struct {
	Kind error
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Kind != nil {
		msg += ": " + e.Kind.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Request copies the local file Src to Dst on the client filesystem.
type Request struct {
	Src string `toml:"src"`
	Dst string `toml:"dst"`
}

// copyChunk is the unit between two cancellation checks.
const copyChunk = 64 << 10

type options struct {
	log         *slog.Logger
	policy      Policy
	parallelism int
}

type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithParallelism bounds the concurrent copies of CopyAll, n <= 0 keeps the default.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// Client copies files into one filesystem. It is safe for concurrent use.
type Client struct {
	fs     FileSystem
	log    *slog.Logger
	policy Policy
	limit  int
	closed atomic.Bool
}

// NewClient copies into fs, ReplaceAtomic unless WithPolicy says otherwise.
func NewClient(fs FileSystem, opts ...Option) *Client {
	o := options{log: slog.Default(), policy: ReplaceAtomic, parallelism: DefaultParallelism}
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{fs: fs, log: o.log, policy: o.policy, limit: o.parallelism}
}

// Policy returns the replacement policy of the client.
func (c *Client) Policy() Policy {
	return c.policy
}

// CopyIfAbsentOrReplace leaves Dst holding the bytes of Src whether or not it
// existed before.
func (c *Client) CopyIfAbsentOrReplace(ctx context.Context, req Request) (err error) {
	if c.closed.Load() {
		return &Error{Kind: hbkit.ErrUseAfterClose, Op: "copy", Path: req.Dst, Err: errors.New("client closed")}
	}
	start := time.Now()
	defer func() { observe(c.policy, start, err) }()
	defer func() {
		if err != nil {
			c.log.Debug("copy failed", "src", req.Src, "dst", req.Dst, "err", err)
			err = &Error{Kind: ErrTransfer, Op: "copy", Path: req.Dst, Err: err}
		}
	}()

	if req.Src == "" || req.Dst == "" {
		return errors.New("source and destination are required")
	}
	src, err := os.Open(req.Src)
	if err != nil {
		return errors.Wrap(err, "open source")
	}
	defer src.Close()
	info, err := src.Stat()
	if err != nil {
		return errors.Wrap(err, "stat source")
	}
	if info.IsDir() {
		return errors.Errorf("source %s is a directory", req.Src)
	}

	dst := path.Clean(req.Dst)
	if dir := path.Dir(dst); dir != "." && dir != "/" {
		if err := c.fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create parent %s", dir)
		}
	}
	exists, err := c.exists(dst)
	if err != nil {
		return err
	}
	if exists {
		c.log.Info("destination already exists, replacing", "dst", dst, "policy", c.policy.String())
	}
	var n int64
	switch c.policy {
	case DeleteThenCopy:
		n, err = c.deleteThenCopy(ctx, src, dst, exists)
	default:
		n, err = c.replaceAtomic(ctx, src, dst)
	}
	if err != nil {
		return err
	}
	bytesCopied.Add(float64(n))
	c.log.Info("copied", "src", req.Src, "dst", dst, "bytes", n, "policy", c.policy.String())
	return nil
}

// tempName is a hidden sibling of dst, unique per copy.
func tempName(dst string) string {
	return path.Join(path.Dir(dst), "."+path.Base(dst)+"._COPYING_."+uuid.NewString())
}

func (c *Client) replaceAtomic(ctx context.Context, src io.Reader, dst string) (int64, error) {
	tmp := tempName(dst)
	n, err := c.write(ctx, tmp, src)
	if err != nil {
		if rerr := c.fs.Remove(tmp); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			c.log.Warn("temporary file left behind", "path", tmp, "err", rerr)
		}
		return n, err
	}
	if err := c.fs.Rename(tmp, dst); err != nil {
		_ = c.fs.Remove(tmp)
		return n, errors.Wrapf(err, "rename %s", tmp)
	}
	return n, nil
}

func (c *Client) exists(name string) (bool, error) {
	_, err := c.fs.Stat(name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	}
	return false, errors.Wrapf(err, "stat %s", name)
}

func (c *Client) deleteThenCopy(ctx context.Context, src io.Reader, dst string, exists bool) (int64, error) {
	if exists {
		if err := c.fs.Remove(dst); err != nil {
			return 0, errors.Wrapf(err, "delete %s", dst)
		}
		c.log.Debug("deleted existing destination", "dst", dst)
	}
	return c.write(ctx, dst, src)
}

func (c *Client) write(ctx context.Context, name string, src io.Reader) (int64, error) {
	w, err := c.fs.Create(name)
	if err != nil {
		return 0, errors.Wrapf(err, "create %s", name)
	}
	n, err := copyContext(ctx, w, src)
	if cerr := w.Close(); err == nil && cerr != nil {
		err = errors.Wrapf(cerr, "close %s", name)
	}
	return n, err
}

// copyContext is io.Copy checking ctx between chunks.
func copyContext(ctx context.Context, w io.Writer, r io.Reader) (int64, error) {
	buf := make([]byte, copyChunk)
	var n int64
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		nr, rerr := r.Read(buf)
		if nr > 0 {
			nw, werr := w.Write(buf[:nr])
			n += int64(nw)
			if werr != nil {
				return n, werr
			}
			if nw != nr {
				return n, io.ErrShortWrite
			}
		}
		if rerr == io.EOF {
			return n, nil
		}
		if rerr != nil {
			return n, rerr
		}
	}
}

// Open returns a client copying below cfg.LocalRoot when set, into HDFS otherwise.
func Open(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil || cfg.LocalRoot == "" {
		return Dial(ctx, cfg, opts...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, &Error{Kind: ErrTransfer, Op: "open", Err: err}
	}
	opts = append([]Option{WithPolicy(cfg.Policy), WithParallelism(cfg.Parallelism)}, opts...)
	return NewClient(&LocalFS{Root: cfg.LocalRoot}, opts...), nil
}

// CopyAll runs the requests concurrently, the first failure cancels the rest
// and is returned.
func (c *Client) CopyAll(ctx context.Context, reqs []Request) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.limit)
	for _, r := range reqs {
		r := r
		g.Go(func() error {
			return c.CopyIfAbsentOrReplace(gctx, r)
		})
	}
	return g.Wait()
}

// Close releases the filesystem, later calls fail with hbkit.ErrUseAfterClose.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return &Error{Kind: hbkit.ErrUseAfterClose, Op: "close", Err: errors.New("client closed")}
	}
	if err := c.fs.Close(); err != nil {
		return &Error{Kind: ErrTransfer, Op: "close", Err: err}
	}
	return nil
}
