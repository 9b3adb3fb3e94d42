package transfer

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrOutsideRoot is returned for a LocalFS path that resolves above Root.
var ErrOutsideRoot = errors.New("path escapes the filesystem root")

// LocalFS is a FileSystem rooted at a local directory, destination paths are
// resolved below Root and may not leave it.
type LocalFS struct {
	Root string
}

func (l *LocalFS) path(op, name string) (string, error) {
	root := filepath.Clean(l.Root)
	p := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &os.PathError{Op: op, Path: name, Err: ErrOutsideRoot}
	}
	return p, nil
}

func (l *LocalFS) Stat(name string) (os.FileInfo, error) {
	p, err := l.path("stat", name)
	if err != nil {
		return nil, err
	}
	return os.Stat(p)
}

func (l *LocalFS) Remove(name string) error {
	p, err := l.path("remove", name)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

func (l *LocalFS) Create(name string) (io.WriteCloser, error) {
	p, err := l.path("create", name)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (l *LocalFS) Rename(oldpath, newpath string) error {
	from, err := l.path("rename", oldpath)
	if err != nil {
		return err
	}
	to, err := l.path("rename", newpath)
	if err != nil {
		return err
	}
	return os.Rename(from, to)
}

func (l *LocalFS) MkdirAll(dir string, perm os.FileMode) error {
	p, err := l.path("mkdir", dir)
	if err != nil {
		return err
	}
	return os.MkdirAll(p, perm)
}

func (l *LocalFS) Close() error {
	return nil
}
