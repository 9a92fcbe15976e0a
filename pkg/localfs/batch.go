package localfs

import (
	"context"
	"errors"
	"os"
	"time"
)

// Copy copies name to target, preferring a hardlink when hardlink_on_copy
// is enabled and falling back to a temp-dir byte copy.
func (s *Store) Copy(ctx context.Context, name, target string) error {
	start := time.Now()
	err := s.copyAll(ctx, map[string]string{name: target})
	if err != nil {
		err = err.(*BatchError).unwrapSingle()
	}
	s.metrics.ObserveCopy(1, time.Since(start), err)
	return err
}

// Move moves name to target, preferring a hardlink-then-unlink and falling
// back to a host rename.
func (s *Store) Move(ctx context.Context, name, target string) error {
	start := time.Now()
	err := s.moveAll(ctx, map[string]string{name: target})
	if err != nil {
		err = err.(*BatchError).unwrapSingle()
	}
	s.metrics.ObserveMove(1, time.Since(start), err)
	return err
}

// Delete removes name if present. Deleting a non-existent name, or the
// storage root itself, succeeds silently.
func (s *Store) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := s.deleteAll(ctx, []string{name})
	if err != nil {
		err = err.(*BatchError).unwrapSingle()
	}
	s.metrics.ObserveDelete(1, time.Since(start), err)
	return err
}

// CopyAll copies every source in pairs to its mapped target. pairs must be
// a bijection (no duplicate target values); violating that is rejected
// before any I/O runs.
func (s *Store) CopyAll(ctx context.Context, pairs map[string]string) error {
	start := time.Now()
	err := s.copyAll(ctx, pairs)
	s.metrics.ObserveCopy(len(pairs), time.Since(start), err)
	return err
}

// MoveAll moves every source in pairs to its mapped target under the same
// bijection constraint as CopyAll.
func (s *Store) MoveAll(ctx context.Context, pairs map[string]string) error {
	start := time.Now()
	err := s.moveAll(ctx, pairs)
	s.metrics.ObserveMove(len(pairs), time.Since(start), err)
	return err
}

// DeleteAll removes every name in names, equivalent to iterating Delete and
// collecting per-name results into one BatchError.
func (s *Store) DeleteAll(ctx context.Context, names []string) error {
	start := time.Now()
	err := s.deleteAll(ctx, names)
	s.metrics.ObserveDelete(len(names), time.Since(start), err)
	return err
}

func (s *Store) copyAll(ctx context.Context, pairs map[string]string) error {
	if err := rejectDuplicateTargets(pairs); err != nil {
		return err
	}

	failures := map[string]*Error{}
	for source, target := range pairs {
		if err := s.copyOne(ctx, source, target); err != nil {
			failures[source] = translateBatchEntry(s.resolver, source, target, err)
		}
	}
	return batchErrorOrNil(failures)
}

func (s *Store) moveAll(ctx context.Context, pairs map[string]string) error {
	if err := rejectDuplicateTargets(pairs); err != nil {
		return err
	}

	failures := map[string]*Error{}
	for source, target := range pairs {
		if err := s.moveOne(ctx, source, target); err != nil {
			failures[source] = translateBatchEntry(s.resolver, source, target, err)
		}
	}
	return batchErrorOrNil(failures)
}

func (s *Store) deleteAll(ctx context.Context, names []string) error {
	failures := map[string]*Error{}
	for _, name := range names {
		if err := s.deleteOne(ctx, name); err != nil {
			failures[name] = translateBatchEntry(s.resolver, name, "", err)
		}
	}
	return batchErrorOrNil(failures)
}

func (s *Store) copyOne(ctx context.Context, name, targetName string) error {
	source, rErr := s.resolve(name)
	if rErr != nil {
		return rErr
	}
	target, rErr := s.resolve(targetName)
	if rErr != nil {
		return rErr
	}

	_, err := await(ctx, s.pool, s.loop, func() (struct{}, error) {
		return struct{}{}, doCopy(source, target, s.tempDir, s.hardlinkOnCopy, s.synced)
	})
	return err
}

func (s *Store) moveOne(ctx context.Context, name, targetName string) error {
	source, rErr := s.resolve(name)
	if rErr != nil {
		return rErr
	}
	target, rErr := s.resolve(targetName)
	if rErr != nil {
		return rErr
	}

	_, err := await(ctx, s.pool, s.loop, func() (struct{}, error) {
		return struct{}{}, doMove(source, target, s.synced)
	})
	return err
}

func (s *Store) deleteOne(ctx context.Context, name string) error {
	path, rErr := s.resolve(name)
	if rErr != nil {
		return rErr
	}

	_, err := await(ctx, s.pool, s.loop, func() (struct{}, error) {
		if path == s.root {
			return struct{}{}, nil
		}
		if err := os.Remove(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return struct{}{}, nil
			}
			if isDirNotEmpty(err) {
				return struct{}{}, newError(KindIsADirectory, name, "", nil)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
	return err
}

// rejectDuplicateTargets implements invariant 5: copy_all/move_all require
// the target multiset to be a set. Go maps already guarantee distinct keys
// (sources), so only the values need checking.
func rejectDuplicateTargets(pairs map[string]string) error {
	seen := make(map[string]struct{}, len(pairs))
	for _, target := range pairs {
		if _, dup := seen[target]; dup {
			return newError(KindIOError, target, "duplicate target in batch operation", nil)
		}
		seen[target] = struct{}{}
	}
	return nil
}

func batchErrorOrNil(failures map[string]*Error) error {
	if len(failures) == 0 {
		return nil
	}
	return &BatchError{Failures: failures}
}

// Info returns metadata for name, or a zero Info and ok == false if it does
// not exist or is a directory.
func (s *Store) Info(ctx context.Context, name string) (Info, bool, error) {
	start := time.Now()

	path, rErr := s.resolve(name)
	if rErr != nil {
		s.metrics.ObserveInfo(time.Since(start), rErr)
		return Info{}, false, rErr
	}

	info, err := await(ctx, s.pool, s.loop, func() (Info, error) {
		return statInfo(s.resolver, path)
	})
	if err != nil {
		if errors.Is(err, errIsDirectory) || !pathExists(path) {
			s.metrics.ObserveInfo(time.Since(start), nil)
			return Info{}, false, nil
		}
		domainErr := normalizeScalar(s.resolver, name, err)
		s.metrics.ObserveInfo(time.Since(start), domainErr)
		return Info{}, false, domainErr
	}

	s.metrics.ObserveInfo(time.Since(start), nil)
	return info, true, nil
}

// InfoAll returns metadata for every name in names that currently exists
// (as a regular file); absent names are simply omitted from the result.
func (s *Store) InfoAll(ctx context.Context, names []string) (map[string]Info, error) {
	start := time.Now()

	result := make(map[string]Info, len(names))
	for _, name := range names {
		path, rErr := s.resolve(name)
		if rErr != nil {
			s.metrics.ObserveInfo(time.Since(start), rErr)
			return nil, rErr
		}

		info, err := await(ctx, s.pool, s.loop, func() (Info, error) {
			return statInfo(s.resolver, path)
		})
		if err != nil {
			continue
		}
		result[name] = info
	}

	s.metrics.ObserveInfo(time.Since(start), nil)
	return result, nil
}

// List returns metadata for every regular file whose root-relative
// '/'-delimited path matches glob. An empty glob returns an empty map
// without touching the filesystem.
func (s *Store) List(ctx context.Context, glob string) (map[string]Info, error) {
	start := time.Now()

	if glob == "" {
		s.metrics.ObserveList(0, time.Since(start), nil)
		return map[string]Info{}, nil
	}

	names, err := await(ctx, s.pool, s.loop, func() ([]string, error) {
		return s.glob.list(glob)
	})
	if err != nil {
		domainErr := normalizeScalar(s.resolver, "", err)
		s.metrics.ObserveList(0, time.Since(start), domainErr)
		return nil, domainErr
	}

	result := make(map[string]Info, len(names))
	for _, name := range names {
		path, rErr := s.resolve(name)
		if rErr != nil {
			continue
		}
		info, statErr := statInfo(s.resolver, path)
		if statErr != nil {
			continue
		}
		result[name] = info
	}

	s.metrics.ObserveList(len(result), time.Since(start), nil)
	return result, nil
}

// Ping always succeeds: a local filesystem store is always available,
// matching LocalActiveFs.ping's unconditional completion.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}
