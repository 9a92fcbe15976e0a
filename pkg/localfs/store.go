// Package localfs implements a local-filesystem-backed object store: a
// bounded storage root exposed through upload, append, download, list,
// info, copy, move and delete operations, with path confinement, atomic
// publication, configurable durability, hardlink-preferred copy/move, a
// closed error taxonomy, and batch semantics over multiple keys.
//
// Internally every blocking filesystem call runs on a fixed worker pool
// dispatched from a single-threaded event loop, mirroring the
// eventloop-plus-blocking-executor split of the system this package's
// design is grounded on: the event loop is never allowed to make a
// syscall that could stall it.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cubbit/localfs/internal/logger"
)

// errIsDirectory is returned by statInfo when path names a directory,
// which §4.8 treats as absent for Info/InfoAll/List rather than as a
// stat failure.
var errIsDirectory = errors.New("localfs: path is a directory")

// Info describes a single stored file, returned by Info/InfoAll and
// included in List results.
type Info struct {
	Name    string    // logical name, '/'-separated
	Size    int64
	ModTime time.Time
}

// Store is a single bounded object store rooted at one directory on the
// local filesystem.
//
// A Store is safe for concurrent use from any number of goroutines: all
// shared state (the event loop's task queue, the worker pool's job queue)
// is synchronized internally.
type Store struct {
	resolver *resolver
	glob     *globLister

	loop     *EventLoop
	pool     *WorkerPool
	ownLoop  bool
	ownPool  bool

	synced           bool
	syncedAppend     bool
	hardlinkOnCopy   bool
	readerBufferSize int
	metrics          Metrics

	root    string
	tempDir string
}

// Option configures a Store at construction time.
type Option func(*options)

type options struct {
	synced           bool
	syncedAppend     bool
	hardlinkOnCopy   bool
	readerBufferSize int
	workers          int
	metrics          Metrics
	tempDir          string
	loop             *EventLoop
	pool             *WorkerPool
}

func defaultOptions() *options {
	return &options{
		synced:           true,
		syncedAppend:     false,
		hardlinkOnCopy:   true,
		readerBufferSize: 256 * 1024,
		workers:          4,
		metrics:          noopMetrics{},
		tempDir:          ".upload",
	}
}

// WithSynced enables or disables fsync-on-publish. Enabled by default;
// disabling trades durability for throughput, matching the "synced"
// LocalActiveFs constructor flag.
func WithSynced(synced bool) Option {
	return func(o *options) { o.synced = synced }
}

// WithHardlinkOnCopy enables or disables the hardlink-first copy strategy.
// Enabled by default; disabling always copies bytes through a temp file,
// useful on filesystems where hardlinks silently violate the store's
// copy-on-write assumptions.
func WithHardlinkOnCopy(enabled bool) Option {
	return func(o *options) { o.hardlinkOnCopy = enabled }
}

// WithWorkers sets the size of a freshly constructed blocking worker pool.
// Defaults to 4. Ignored if WithWorkerPool supplies a pool directly.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithSyncedAppend enables or disables opening append file channels with a
// synchronous-write flag, independent of WithSynced's publish-time fsync
// policy.
func WithSyncedAppend(enabled bool) Option {
	return func(o *options) { o.syncedAppend = enabled }
}

// WithReaderBufferSize sets the block size used when streaming download
// reads. Defaults to 256 KiB.
func WithReaderBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.readerBufferSize = n
		}
	}
}

// WithMetrics supplies a Metrics collaborator. Defaults to a no-op
// implementation when omitted.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTempDir overrides the hidden staging directory. A relative value is
// joined under root; an absolute value is used as-is but must still resolve
// under root, matching §3's "must lie under root" requirement for the
// temp_dir override. Defaults to "<root>/.upload".
func WithTempDir(path string) Option {
	return func(o *options) { o.tempDir = path }
}

// WithEventLoop supplies an EventLoop for the Store to post completions on
// instead of constructing its own, letting several Stores share one
// single-threaded loop. The caller retains ownership: Close will not stop a
// loop it did not create.
func WithEventLoop(loop *EventLoop) Option {
	return func(o *options) { o.loop = loop }
}

// WithWorkerPool supplies a WorkerPool for the Store to dispatch blocking
// calls on instead of constructing its own, letting several Stores share one
// pool of blocking-I/O goroutines. The caller retains ownership: Close will
// not close a pool it did not create.
func WithWorkerPool(pool *WorkerPool) Option {
	return func(o *options) { o.pool = pool }
}

// New opens a Store rooted at root, creating root and its staging
// directory if they do not already exist.
//
// Context Cancellation:
// The context is checked before any filesystem operation; it does not
// bound the lifetime of the returned Store.
//
// Parameters:
//   - ctx: context for the setup operations only
//   - root: absolute or relative path to the storage root
//   - opts: functional options configuring durability, copy strategy,
//     worker pool size, and metrics collaborator
//
// Returns:
//   - *Store: a ready-to-use store
//   - error: if root cannot be created or resolved
func New(ctx context.Context, root string, opts ...Option) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(absRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	tempDir := o.tempDir
	if !filepath.IsAbs(tempDir) {
		tempDir = filepath.Join(absRoot, tempDir)
	}
	tempDir = filepath.Clean(tempDir)
	if !isDescendant(absRoot, tempDir) {
		return nil, fmt.Errorf("temp dir %s does not lie under storage root %s", tempDir, absRoot)
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}

	res := newResolver(absRoot, tempDir)

	loop, ownLoop := o.loop, false
	if loop == nil {
		loop, ownLoop = NewEventLoop(), true
	}
	pool, ownPool := o.pool, false
	if pool == nil {
		pool, ownPool = NewWorkerPool(o.workers), true
	}

	s := &Store{
		resolver:         res,
		glob:             newGlobLister(res),
		loop:             loop,
		pool:             pool,
		ownLoop:          ownLoop,
		ownPool:          ownPool,
		synced:           o.synced,
		syncedAppend:     o.syncedAppend,
		hardlinkOnCopy:   o.hardlinkOnCopy,
		readerBufferSize: o.readerBufferSize,
		metrics:          o.metrics,
		root:             absRoot,
		tempDir:          tempDir,
	}

	logger.Info("localfs: store opened at %s (workers=%d synced=%v hardlink_on_copy=%v)",
		absRoot, o.workers, o.synced, o.hardlinkOnCopy)

	return s, nil
}

// Close stops the event loop and worker pool, waiting for in-flight jobs to
// finish. In-flight Futures that have not yet been awaited will still
// complete normally. A dispatcher supplied via WithEventLoop/WithWorkerPool
// is left running, since other Stores may still be sharing it.
func (s *Store) Close() error {
	// The pool drains first so completions its jobs post to the loop are
	// still accepted and run before the loop stops.
	if s.ownPool {
		s.pool.close()
	}
	if s.ownLoop {
		s.loop.stop()
	}
	return nil
}

// resolve is the shared entry point every public operation uses to turn a
// logical name into a confined absolute path, reporting a scalar *Error
// with the operation's own name on failure.
func (s *Store) resolve(name string) (string, *Error) {
	return s.resolver.resolve(name)
}

func statInfo(res *resolver, path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	if fi.IsDir() {
		return Info{}, errIsDirectory
	}
	return Info{
		Name:    res.relativeName(path),
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}, nil
}
