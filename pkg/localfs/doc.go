// Package localfs implements a local-filesystem-backed object store with a
// small, uniform file API: upload, append, download, list, info, copy, move,
// and delete, all bounded to a single storage root.
//
// The package is organized the way the teacher's content stores are: one
// file per concern rather than one giant type.
//
//   - resolver.go     logical name -> confined absolute path
//   - durability.go   best-effort fsync of files and directories
//   - target.go       atomic "make this path exist with this content" helper
//   - primitives.go   hardlink/rename copy and move, touch
//   - glob.go         glob splitting, walking, whole-path matching
//   - errors.go       the closed domain error taxonomy and its normalizer
//   - dispatcher.go   event loop + worker pool + futures
//   - channel.go       byte-sink / byte-source streaming abstraction
//   - metrics.go      opaque operation-metrics observer
//   - store.go        Store type, options, constructor, name resolution
//   - upload.go       upload state machine
//   - append.go       append state machine
//   - download.go     download state machine
//   - batch.go        copy/move/delete and their *_all batch variants,
//     plus info/info_all/list/ping
//
// Safety envelope: every path handed to the host filesystem is a verified
// descendant of the storage root, every published file is either fully
// written or absent, and host filesystem errors are normalized into the
// closed error taxonomy in errors.go before they reach a caller.
package localfs
