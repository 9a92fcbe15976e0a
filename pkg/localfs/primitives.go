package localfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cubbit/localfs/internal/logger"
)

// now is overridable in tests; production code always uses time.Now.
var now = time.Now

// uploadTempPrefix names staging files created in the temp directory, for
// both fresh uploads and copy-fallback staging.
const uploadTempPrefix = "upload"

// touch sets source's mtime to the current time, matching the Java
// CurrentTimeProvider-driven `touch(path, now)` call used whenever a
// copy/move target equals its source.
func touch(path string) error {
	t := now()
	if err := os.Chtimes(path, t, t); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newError(KindFileNotFound, "", "", err)
		}
		return err
	}
	return nil
}

// moveViaHardlink implements §4.4 Move: link target to source's inode and
// unlink source, falling back to os.Rename (the host's atomic rename) when
// the link fails for any reason (e.g. cross-device, or target already
// exists). Either way target's mtime is bumped afterward.
func moveViaHardlink(source, target string) error {
	if err := os.Link(source, target); err != nil {
		var linkErr *os.LinkError
		if errors.As(err, &linkErr) {
			if renameErr := os.Rename(source, target); renameErr != nil {
				return renameErr
			}
		} else {
			return err
		}
	} else if err := os.Remove(source); err != nil {
		return err
	}
	return touch(target)
}

// copyViaHardlink implements the hardlink branch of §4.4 Copy: a second
// directory entry pointing at source's inode, zero bytes copied.
func copyViaHardlink(source, target string) error {
	if err := os.Link(source, target); err != nil {
		return err
	}
	return touch(target)
}

// copyViaTempDir implements the fallback branch of §4.4 Copy: stage a fresh
// copy of source's bytes in tempDir, then atomically rename it onto target.
// Called from inside the Target Ensurer's produce callback, so target's
// parent directory is already guaranteed to exist. The staging file is
// unlinked on any failure.
func copyViaTempDir(source, target, tempDir string) error {
	staging, err := os.CreateTemp(tempDir, uploadTempPrefix)
	if err != nil {
		return err
	}
	stagingPath := staging.Name()

	copyErr := func() error {
		src, err := os.Open(source)
		if err != nil {
			return err
		}
		defer func() { _ = src.Close() }()

		if _, err := io.Copy(staging, src); err != nil {
			return err
		}
		return staging.Close()
	}()
	if copyErr != nil {
		_ = os.Remove(stagingPath)
		return copyErr
	}

	if err := os.Rename(stagingPath, target); err != nil {
		_ = os.Remove(stagingPath)
		return err
	}
	return nil
}

// doCopy implements §4.4 Copy in full: same-path touch, hardlink attempt
// with fallback (when enabled), or straight temp-dir copy.
func doCopy(source, target, tempDir string, hardlinkOnCopy, synced bool) error {
	if source == target {
		return touch(source)
	}

	copyBytes := func(target string) error {
		if err := copyViaTempDir(source, target, tempDir); err != nil {
			return err
		}
		if synced {
			fsyncFile(target)
		}
		return nil
	}

	if !hardlinkOnCopy {
		return ensureTargetVoid(target, synced, copyBytes)
	}

	hardlinkErr := ensureTargetVoid(target, synced, func(target string) error {
		return copyViaHardlink(source, target)
	})
	if hardlinkErr == nil {
		return nil
	}

	logger.Warn("copy %s -> %s: hardlink failed (%v), falling back to temp-dir copy", source, target, hardlinkErr)
	if tempErr := ensureTargetVoid(target, synced, copyBytes); tempErr != nil {
		return fmt.Errorf("%w (hardlink attempt: %v)", tempErr, hardlinkErr)
	}
	return nil
}

// doMove implements §4.4 Move in full: same-path touch, or hardlink+unlink
// via the Target Ensurer with rename fallback.
func doMove(source, target string, synced bool) error {
	if source == target {
		return touch(source)
	}
	return ensureTargetVoid(target, synced, func(target string) error {
		return moveViaHardlink(source, target)
	})
}
