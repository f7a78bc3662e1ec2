package vfs

import (
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// registered VFSs, and the name of the default VFS.
var registry = struct {
	m   map[string]*VFS
	def string
	mu  sync.Mutex
}{m: make(map[string]*VFS)}

// Register the VFS under its Name. If |makeDefault|, or if no default VFS is
// yet registered, it becomes the default VFS. Re-registering a Name replaces
// the prior VFS.
func Register(v *VFS, makeDefault bool) error {
	if v.Name == "" {
		return errors.New("VFS Name is empty")
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()

	registry.m[v.Name] = v
	if makeDefault || registry.def == "" {
		registry.def = v.Name
	}
	log.WithFields(log.Fields{"vfs": v.Name, "default": registry.def == v.Name}).
		Debug("registered VFS")
	return nil
}

// Unregister the VFS. If it was the default, there is no longer a default VFS.
func Unregister(v *VFS) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if registry.m[v.Name] != v {
		return
	}
	delete(registry.m, v.Name)
	if registry.def == v.Name {
		registry.def = ""
	}
}

// Find returns the VFS registered as |name|, or the default VFS if |name| is
// empty. It returns nil if no such VFS is registered.
func Find(name string) *VFS {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if name == "" {
		name = registry.def
	}
	return registry.m[name]
}
