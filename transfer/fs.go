package transfer

import (
	"io"
	"os"
)

// FileSystem is the destination side of a copy. Implementations must be safe
// for concurrent use, CopyAll writes several files at once.
type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
	Remove(name string) error
	// Create fails when name exists.
	Create(name string) (io.WriteCloser, error)
	// Rename replaces newpath if it exists.
	Rename(oldpath, newpath string) error
	MkdirAll(dir string, perm os.FileMode) error
	Close() error
}
