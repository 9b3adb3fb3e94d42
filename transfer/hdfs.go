package transfer

import (
	"context"
	"io"
	"os"

	"github.com/colinmarc/hdfs/v2"
	"github.com/colinmarc/hdfs/v2/hadoopconf"
	"github.com/pkg/errors"
)

// hdfsFS adapts a namenode client to FileSystem.
type hdfsFS struct {
	c *hdfs.Client
}

func (h *hdfsFS) Stat(name string) (os.FileInfo, error) {
	return h.c.Stat(name)
}

func (h *hdfsFS) Remove(name string) error {
	return h.c.Remove(name)
}

func (h *hdfsFS) Create(name string) (io.WriteCloser, error) {
	w, err := h.c.Create(name)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (h *hdfsFS) Rename(oldpath, newpath string) error {
	return h.c.Rename(oldpath, newpath)
}

func (h *hdfsFS) MkdirAll(dir string, perm os.FileMode) error {
	return h.c.MkdirAll(dir, perm)
}

func (h *hdfsFS) Close() error {
	return h.c.Close()
}

// clientOptions resolves the namenodes from cfg, or from HADOOP_CONF_DIR when
// cfg names none.
func clientOptions(cfg *Config) (hdfs.ClientOptions, error) {
	if len(cfg.NameNodes) > 0 {
		return hdfs.ClientOptions{Addresses: cfg.NameNodes, User: cfg.User}, nil
	}
	conf, err := hadoopconf.LoadFromEnvironment()
	if err != nil {
		return hdfs.ClientOptions{}, errors.Wrap(err, "load hadoop configuration")
	}
	opts := hdfs.ClientOptionsFromConf(conf)
	if len(opts.Addresses) == 0 {
		return hdfs.ClientOptions{}, errors.New("no namenode configured")
	}
	opts.User = cfg.User
	return opts, nil
}

// Dial connects to the namenodes of cfg and returns a client copying into HDFS.
func Dial(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &Error{Kind: ErrTransfer, Op: "dial", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &Error{Kind: ErrTransfer, Op: "dial", Err: err}
	}
	o, err := clientOptions(cfg)
	if err != nil {
		return nil, &Error{Kind: ErrTransfer, Op: "dial", Err: err}
	}
	c, err := hdfs.NewClient(o)
	if err != nil {
		return nil, &Error{Kind: ErrTransfer, Op: "dial", Err: err}
	}
	opts = append([]Option{WithPolicy(cfg.Policy), WithParallelism(cfg.Parallelism)}, opts...)
	return NewClient(&hdfsFS{c: c}, opts...), nil
}
