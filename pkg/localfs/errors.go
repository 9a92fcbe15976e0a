package localfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"syscall"
)

// Kind is the closed set of domain error kinds a caller can branch on.
//
// This mirrors the FsScalarException hierarchy of the original ActiveJ
// source (ForbiddenPathException, FileNotFoundException,
// IsADirectoryException, PathContainsFileException, IllegalOffsetException,
// UnexpectedSizeException, MalformedGlobException, FsIOException) plus a
// distinct FsBatchException shape, kept separate per Design Notes: batch
// errors are never nested inside a scalar error or vice versa.
type Kind int

const (
	// KindForbiddenPath: logical name escapes the storage root or resolves
	// into the temp directory.
	KindForbiddenPath Kind = iota
	// KindFileNotFound: the operation requires a file that does not exist.
	KindFileNotFound
	// KindIsADirectory: the name refers to a directory.
	KindIsADirectory
	// KindPathContainsFile: an intermediate path component is a regular file.
	KindPathContainsFile
	// KindIllegalOffset: offset is negative or exceeds the current file size.
	KindIllegalOffset
	// KindUnexpectedSize: a fixed-size upload observed a different byte count.
	KindUnexpectedSize
	// KindMalformedGlob: the glob pattern could not be parsed.
	KindMalformedGlob
	// KindIOError: any other host filesystem failure.
	KindIOError
	// KindBatch names the batch failure shape. No *Error carries it:
	// copy_all/move_all/delete_all report failures as a *BatchError.
	KindBatch
)

func (k Kind) String() string {
	switch k {
	case KindForbiddenPath:
		return "ForbiddenPath"
	case KindFileNotFound:
		return "FileNotFound"
	case KindIsADirectory:
		return "IsADirectory"
	case KindPathContainsFile:
		return "PathContainsFile"
	case KindIllegalOffset:
		return "IllegalOffset"
	case KindUnexpectedSize:
		return "UnexpectedSize"
	case KindMalformedGlob:
		return "MalformedGlob"
	case KindIOError:
		return "IOError"
	case KindBatch:
		return "BatchError"
	default:
		return "Unknown"
	}
}

// Error is the scalar domain error returned by single-name operations.
//
// Callers branch on Kind directly, or use errors.Is with an *Error of the
// wanted Kind (Error implements Is, comparing Kind only, so this works
// through wrapping as well).
type Error struct {
	Kind Kind
	Name string // logical name the error pertains to, when known
	Msg  string
	Err  error // underlying cause, if any
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Name != "" {
		b.WriteString(" '")
		b.WriteString(e.Name)
		b.WriteString("'")
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so that
// errors.Is(err, &Error{Kind: KindFileNotFound}) works without requiring an
// exact Name/Msg/Err match.
func (e *Error) Is(target error) bool {
	var te *Error
	if !errors.As(target, &te) {
		return false
	}
	return e.Kind == te.Kind
}

func newError(kind Kind, name, msg string, cause error) *Error {
	return &Error{Kind: kind, Name: name, Msg: msg, Err: cause}
}

// BatchError wraps a per-key failure map produced by a multi-key operation.
// It deliberately does not embed or implement *Error: scalar and batch
// errors are distinct shapes, never nested in one another.
type BatchError struct {
	Failures map[string]*Error
}

func (e *BatchError) Error() string {
	var b strings.Builder
	b.WriteString("batch error: ")
	first := true
	for name, scalar := range e.Failures {
		if !first {
			b.WriteString("; ")
		}
		first = false
		fmt.Fprintf(&b, "%s: %s", name, scalar.Error())
	}
	return b.String()
}

// unwrapSingle collapses a one-element BatchError back into its scalar
// error, for single-key convenience wrappers around batch primitives (e.g.
// Copy delegating to CopyAll with a single-entry map).
func (e *BatchError) unwrapSingle() *Error {
	if len(e.Failures) != 1 {
		return newError(KindIOError, "", "batch error did not collapse to a single failure", e)
	}
	for _, scalar := range e.Failures {
		return scalar
	}
	return nil
}

// normalizeScalar translates a raw host error into a scalar domain *Error.
//
// name is the logical name the operation concerned, used to re-check
// existence/directory-ness when the raw error doesn't already carry enough
// information (mirrors LocalActiveFs.translateScalarErrors).
func normalizeScalar(resolver *resolver, name string, err error) *Error {
	if err == nil {
		return nil
	}

	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var batchErr *BatchError
	if errors.As(err, &batchErr) {
		return batchErr.unwrapSingle()
	}

	if errors.Is(err, errMalformedGlob) {
		return newError(KindMalformedGlob, name, err.Error(), nil)
	}

	if isExistsErr(err) {
		if name != "" {
			if resolved, rErr := resolver.resolve(name); rErr == nil {
				if isDir(resolved) {
					return newError(KindIsADirectory, name, "", nil)
				}
			}
		}
		return newError(KindPathContainsFile, name, "", nil)
	}

	if errors.Is(err, os.ErrNotExist) || errors.Is(err, fs.ErrNotExist) {
		return newError(KindFileNotFound, name, "", nil)
	}

	// Fall back to re-probing the filesystem for more context, exactly as
	// LocalActiveFs re-stats the path when the raw error is ambiguous.
	if name != "" {
		resolved, rErr := resolver.resolve(name)
		if rErr == nil {
			if !pathExists(resolved) {
				return newError(KindFileNotFound, name, "", nil)
			}
			if isDir(resolved) {
				return newError(KindIsADirectory, name, "", nil)
			}
		}
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return newError(KindIOError, name, "I/O error", err)
	}
	return newError(KindIOError, name, "unknown error", err)
}

// translateBatchEntry translates a raw host error for one key of a batch
// operation, mirroring LocalActiveFs.translateBatchErrors. source/target
// are the two logical names involved (target may be empty for single-name
// batch ops like delete_all).
func translateBatchEntry(resolver *resolver, source, target string, err error) *Error {
	if err == nil {
		return nil
	}

	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr
	}

	if isExistsErr(err) {
		if scalar := directoryCheck(resolver, source, target); scalar != nil {
			return scalar
		}
		return newError(KindPathContainsFile, source, "", nil)
	}

	if errors.Is(err, os.ErrNotExist) {
		return newError(KindFileNotFound, source, "", nil)
	}

	if scalar := existsCheck(resolver, source); scalar != nil {
		return scalar
	}
	if scalar := directoryCheck(resolver, source, target); scalar != nil {
		return scalar
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return newError(KindIOError, source, "I/O error", err)
	}
	return newError(KindIOError, source, "unknown error", err)
}

func directoryCheck(resolver *resolver, source, target string) *Error {
	if resolved, err := resolver.resolve(source); err == nil && isDir(resolved) {
		return newError(KindIsADirectory, source, "", nil)
	}
	if target != "" {
		if resolved, err := resolver.resolve(target); err == nil && isDir(resolved) {
			return newError(KindIsADirectory, target, "", nil)
		}
	}
	return nil
}

func existsCheck(resolver *resolver, name string) *Error {
	resolved, err := resolver.resolve(name)
	if err != nil {
		return nil
	}
	if !pathExists(resolved) {
		return newError(KindFileNotFound, name, "", nil)
	}
	return nil
}

func isExistsErr(err error) bool {
	return errors.Is(err, os.ErrExist) || errors.Is(err, fs.ErrExist)
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// isDirNotEmpty reports whether err is the platform's "directory not empty"
// failure, as raised by os.Remove/os.Rename onto an existing non-empty
// directory.
func isDirNotEmpty(err error) bool {
	return errors.Is(err, syscall.ENOTEMPTY)
}

var errMalformedGlob = errors.New("malformed glob pattern")
