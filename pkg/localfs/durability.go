package localfs

import (
	"errors"
	"os"
	"syscall"

	"github.com/cubbit/localfs/internal/logger"
	"golang.org/x/sys/unix"
)

// fsyncFile forces buffered writes to path's file to durable storage.
//
// This is best-effort: a failure is logged and swallowed, never returned to
// the caller, per the policy in §4.2 ("never fail the operation because of
// a non-fatal fsync error").
func fsyncFile(path string) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		logger.Warn("fsync: open %s: %v", path, err)
		return
	}
	defer func() { _ = f.Close() }()

	if err := f.Sync(); err != nil {
		logger.Warn("fsync: sync %s: %v", path, err)
	}
}

// fsyncDir forces the directory entry changes in path (creates, renames,
// unlinks) to durable storage. Some platforms reject fsync on directories
// or treat it as a no-op; both are tolerated silently.
func fsyncDir(path string) {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("fsync: open dir %s: %v", path, err)
		return
	}
	defer func() { _ = f.Close() }()

	if err := f.Sync(); err != nil && !isUnsupportedFsync(err) {
		logger.Warn("fsync: sync dir %s: %v", path, err)
	}
}

// isUnsupportedFsync reports whether err indicates the platform simply does
// not support syncing this kind of file descriptor (directory fsync on some
// filesystems, e.g. certain FUSE mounts, returns ENOTSUP/EINVAL rather than
// succeeding or failing meaningfully).
func isUnsupportedFsync(err error) bool {
	return errors.Is(err, unix.ENOTSUP) || errors.Is(err, unix.EINVAL) || errors.Is(err, syscall.ENOSYS)
}
