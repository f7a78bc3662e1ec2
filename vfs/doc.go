// Package vfs implements a SQLite virtual file system over an afero.Fs which
// stands in for the flash file system of an embedded device.
//
// Database files are opened on the underlying file system. Rollback journals
// (and, optionally, write-ahead logs) are opened as ephemeral memory files
// instead: each is backed by its own blockcache.Cache, lives only as long as
// its File handle, and never touches flash. Journals are small, short-lived,
// and written densely with zeros, which is precisely the workload the
// block cache is built for, and moving them off flash spares both write
// cycles and latency.
//
// Errors returned by the VFS and its Files carry SQLite result codes as
// their cause, and ResultCode maps them for the engine boundary. Locking is
// not implemented: the VFS assumes a single connection, which serializes all
// use of each File.
package vfs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	openedFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flashvfs_opened_files_total",
		Help: "Cumulative number of files opened by the VFS, by kind (memory or disk).",
	}, []string{"kind"})
	fileErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flashvfs_file_errors_total",
		Help: "Cumulative number of failed file operations, by operation.",
	}, []string{"op"})
)

const (
	kindMemory = "memory"
	kindDisk   = "disk"
)
