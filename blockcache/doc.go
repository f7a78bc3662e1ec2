// Package blockcache implements a sparse, in-memory block cache which backs
// ephemeral files (SQLite rollback journals and write-ahead logs) that are
// never persisted to the underlying flash file system.
//
// A Cache stores arbitrary-offset, arbitrary-length writes into fixed-size
// Blocks of BlockSize bytes, held in ascending order of block index. Writes
// of all-zero content into regions having no Block are elided entirely, so
// the typical journal (a header, a handful of pages, and large zeroed
// regions) materializes only the Blocks it actually needs. Reads locate
// Blocks by index and copy out their content. Regions having no Block are
// left untouched in the caller's buffer: a Cache does not zero-fill holes.
//
// A Cache is owned by exactly one file handle, and is not safe for
// concurrent use. Blocks are obtained from an Allocator, which may be
// bounded to model the heap budget of a constrained device.
package blockcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blocksAllocatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flashvfs_cache_blocks_allocated_total",
		Help: "Cumulative number of cache blocks allocated.",
	})
	blocksFreedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flashvfs_cache_blocks_freed_total",
		Help: "Cumulative number of cache blocks released by cache teardown.",
	})
	allocFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flashvfs_cache_alloc_failures_total",
		Help: "Cumulative number of cache block allocations which failed.",
	})
	elidedSegmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flashvfs_cache_elided_segments_total",
		Help: "Cumulative number of all-zero write segments which were elided.",
	})
	writtenBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flashvfs_cache_written_bytes_total",
		Help: "Cumulative number of bytes written to caches.",
	})
	readBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flashvfs_cache_read_bytes_total",
		Help: "Cumulative number of bytes read from caches.",
	})
)
