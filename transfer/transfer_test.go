package transfer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/challenai/hbkit"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "sample.txt")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func localPath(t *testing.T, fs *LocalFS, name string) string {
	t.Helper()
	p, err := fs.path("test", name)
	require.NoError(t, err)
	return p
}

func readDest(t *testing.T, fs *LocalFS, name string) string {
	t.Helper()
	b, err := os.ReadFile(localPath(t, fs, name))
	require.NoError(t, err)
	return string(b)
}

func listDir(t *testing.T, fs *LocalFS, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(localPath(t, fs, dir))
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCopyAbsentAndReplace(t *testing.T) {
	for _, p := range []Policy{ReplaceAtomic, DeleteThenCopy} {
		t.Run(p.String(), func(t *testing.T) {
			ctx := context.Background()
			fs := &LocalFS{Root: t.TempDir()}
			c := NewClient(fs, WithPolicy(p), WithLogger(quietLogger()))
			assert.Equal(t, p, c.Policy())

			src := writeSource(t, "hello hdfs")
			req := Request{Src: src, Dst: "/user/cloudera/sample"}
			require.NoError(t, c.CopyIfAbsentOrReplace(ctx, req))
			assert.Equal(t, "hello hdfs", readDest(t, fs, req.Dst))

			require.NoError(t, os.WriteFile(src, []byte("second"), 0o644))
			require.NoError(t, c.CopyIfAbsentOrReplace(ctx, req))
			assert.Equal(t, "second", readDest(t, fs, req.Dst))
			assert.Equal(t, []string{"sample"}, listDir(t, fs, "/user/cloudera"))
		})
	}
}

func TestCopyEmptySource(t *testing.T) {
	fs := &LocalFS{Root: t.TempDir()}
	c := NewClient(fs, WithLogger(quietLogger()))
	require.NoError(t, c.CopyIfAbsentOrReplace(context.Background(), Request{Src: writeSource(t, ""), Dst: "empty"}))
	assert.Equal(t, "", readDest(t, fs, "empty"))
}

func TestCopyInvalidRequests(t *testing.T) {
	ctx := context.Background()
	fs := &LocalFS{Root: t.TempDir()}
	c := NewClient(fs, WithLogger(quietLogger()))

	err := c.CopyIfAbsentOrReplace(ctx, Request{Dst: "x"})
	assert.ErrorIs(t, err, ErrTransfer)

	err = c.CopyIfAbsentOrReplace(ctx, Request{Src: filepath.Join(t.TempDir(), "missing"), Dst: "x"})
	assert.ErrorIs(t, err, ErrTransfer)
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = c.CopyIfAbsentOrReplace(ctx, Request{Src: t.TempDir(), Dst: "x"})
	assert.ErrorIs(t, err, ErrTransfer)
	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "copy", terr.Op)
	assert.Equal(t, "x", terr.Path)
}

// failingFS breaks writes after the first byte.
type failingFS struct {
	*LocalFS
	renames int
}

type failingWriter struct {
	io.WriteCloser
}

func (w failingWriter) Write(p []byte) (int, error) {
	if len(p) > 1 {
		n, _ := w.WriteCloser.Write(p[:1])
		return n, errors.New("disk quota exceeded")
	}
	return w.WriteCloser.Write(p)
}

func (f *failingFS) Create(name string) (io.WriteCloser, error) {
	w, err := f.LocalFS.Create(name)
	if err != nil {
		return nil, err
	}
	return failingWriter{w}, nil
}

func (f *failingFS) Rename(oldpath, newpath string) error {
	f.renames++
	return f.LocalFS.Rename(oldpath, newpath)
}

func TestReplaceAtomicKeepsOldDestination(t *testing.T) {
	ctx := context.Background()
	local := &LocalFS{Root: t.TempDir()}
	require.NoError(t, os.WriteFile(localPath(t, local, "sample"), []byte("old"), 0o644))

	fs := &failingFS{LocalFS: local}
	c := NewClient(fs, WithLogger(quietLogger()))
	err := c.CopyIfAbsentOrReplace(ctx, Request{Src: writeSource(t, "new content"), Dst: "/sample"})
	assert.ErrorIs(t, err, ErrTransfer)
	assert.Contains(t, err.Error(), "disk quota exceeded")

	assert.Equal(t, "old", readDest(t, local, "sample"))
	assert.Equal(t, 0, fs.renames)
	// the temporary file is gone
	assert.Equal(t, []string{"sample"}, listDir(t, local, "/"))
}

func TestDeleteThenCopyLeavesPartialCopy(t *testing.T) {
	ctx := context.Background()
	local := &LocalFS{Root: t.TempDir()}
	require.NoError(t, os.WriteFile(localPath(t, local, "sample"), []byte("old"), 0o644))

	c := NewClient(&failingFS{LocalFS: local}, WithPolicy(DeleteThenCopy), WithLogger(quietLogger()))
	err := c.CopyIfAbsentOrReplace(ctx, Request{Src: writeSource(t, "new content"), Dst: "sample"})
	assert.ErrorIs(t, err, ErrTransfer)
	assert.Equal(t, "n", readDest(t, local, "sample"))
}

func TestTempName(t *testing.T) {
	a, b := tempName("/user/cloudera/sample"), tempName("/user/cloudera/sample")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "/user/cloudera/.sample._COPYING_."), a)
}

func TestCopyCancelled(t *testing.T) {
	fs := &LocalFS{Root: t.TempDir()}
	c := NewClient(fs, WithLogger(quietLogger()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.CopyIfAbsentOrReplace(ctx, Request{Src: writeSource(t, "data"), Dst: "sample"})
	assert.ErrorIs(t, err, ErrTransfer)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = fs.Stat("sample")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCopyAll(t *testing.T) {
	ctx := context.Background()
	fs := &LocalFS{Root: t.TempDir()}
	c := NewClient(fs, WithParallelism(2), WithLogger(quietLogger()))

	var reqs []Request
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		reqs = append(reqs, Request{Src: writeSource(t, "content "+name), Dst: "/out/" + name})
	}
	require.NoError(t, c.CopyAll(ctx, reqs))
	for _, r := range reqs {
		assert.Equal(t, "content "+filepath.Base(r.Dst), readDest(t, fs, r.Dst))
	}

	reqs = append(reqs, Request{Src: filepath.Join(t.TempDir(), "missing"), Dst: "/out/f"})
	assert.ErrorIs(t, c.CopyAll(ctx, reqs), ErrTransfer)
}

func TestClientClose(t *testing.T) {
	c := NewClient(&LocalFS{Root: t.TempDir()}, WithLogger(quietLogger()))
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Close(), hbkit.ErrUseAfterClose)
	err := c.CopyIfAbsentOrReplace(context.Background(), Request{Src: writeSource(t, "x"), Dst: "x"})
	assert.ErrorIs(t, err, hbkit.ErrUseAfterClose)
}

func TestLocalFSStaysUnderRoot(t *testing.T) {
	ctx := context.Background()
	parent := t.TempDir()
	root := filepath.Join(parent, "root")
	require.NoError(t, os.Mkdir(root, 0o755))
	fs := &LocalFS{Root: root}

	for _, dst := range []string{"../escaped", "a/../../escaped", ".."} {
		c := NewClient(fs, WithLogger(quietLogger()))
		err := c.CopyIfAbsentOrReplace(ctx, Request{Src: writeSource(t, "x"), Dst: dst})
		assert.ErrorIs(t, err, ErrTransfer, dst)
		assert.ErrorIs(t, err, ErrOutsideRoot, dst)
	}
	_, err := os.Stat(filepath.Join(parent, "escaped"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = fs.Stat("../root")
	assert.ErrorIs(t, err, ErrOutsideRoot)
	assert.ErrorIs(t, fs.Rename("a", "../b"), ErrOutsideRoot)

	// an absolute destination is still resolved below Root
	c := NewClient(fs, WithLogger(quietLogger()))
	require.NoError(t, c.CopyIfAbsentOrReplace(ctx, Request{Src: writeSource(t, "inside"), Dst: "/nested/../ok"}))
	assert.Equal(t, "inside", readDest(t, fs, "ok"))
}

func TestExistingDestinationLogged(t *testing.T) {
	for _, p := range []Policy{ReplaceAtomic, DeleteThenCopy} {
		t.Run(p.String(), func(t *testing.T) {
			ctx := context.Background()
			var logs strings.Builder
			log := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo}))
			c := NewClient(&LocalFS{Root: t.TempDir()}, WithPolicy(p), WithLogger(log))
			req := Request{Src: writeSource(t, "v1"), Dst: "sample"}

			require.NoError(t, c.CopyIfAbsentOrReplace(ctx, req))
			assert.NotContains(t, logs.String(), "destination already exists")

			require.NoError(t, c.CopyIfAbsentOrReplace(ctx, req))
			assert.Equal(t, 1, strings.Count(logs.String(), "destination already exists"))
			assert.Contains(t, logs.String(), "policy="+p.String())
		})
	}
}
