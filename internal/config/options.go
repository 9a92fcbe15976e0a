package config

import "github.com/cubbit/localfs/pkg/localfs"

// StoreOptions translates a StoreConfig into the functional options
// pkg/localfs.New expects, centralizing config-to-constructor wiring the
// way the teacher's CreateAdapters centralizes config-to-adapter wiring.
func StoreOptions(cfg StoreConfig, metrics localfs.Metrics) []localfs.Option {
	opts := []localfs.Option{
		localfs.WithSynced(cfg.Synced),
		localfs.WithSyncedAppend(cfg.SyncedAppend),
		localfs.WithHardlinkOnCopy(cfg.HardlinkOnCopy),
	}

	if cfg.ReaderBufferSize > 0 {
		opts = append(opts, localfs.WithReaderBufferSize(cfg.ReaderBufferSize))
	}
	if cfg.Workers > 0 {
		opts = append(opts, localfs.WithWorkers(cfg.Workers))
	}
	if cfg.TempDir != "" {
		opts = append(opts, localfs.WithTempDir(cfg.TempDir))
	}
	if metrics != nil {
		opts = append(opts, localfs.WithMetrics(metrics))
	}

	return opts
}
