package blockcache

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// ErrNoMem is returned when an Allocator cannot satisfy a Block request.
// It's the only failure a Cache produces.
var ErrNoMem = errors.New("block allocation failed: out of memory")

// Allocator provides and reclaims Blocks on behalf of a Cache. A Cache is
// the exclusive owner of each Block it allocates until it Frees it.
type Allocator interface {
	// Allocate returns a zeroed Block tagged with |index|, or ErrNoMem.
	Allocate(index int64) (*Block, error)
	// Free releases a Block previously returned by Allocate.
	Free(*Block)
}

// HeapAllocator allocates Blocks from the Go heap, without bound.
type HeapAllocator struct{}

// Allocate returns a new zeroed Block.
func (HeapAllocator) Allocate(index int64) (*Block, error) {
	return &Block{Index: index}, nil
}

// Free is a no-op: the Block is reclaimed by the garbage collector.
func (HeapAllocator) Free(*Block) {}

// BoundedAllocator allocates Blocks from the Go heap, but permits at most
// Limit Blocks to be live at once. It models the bounded heap of an embedded
// target, where an exhausted allocator is an expected, non-fatal condition.
// Each live Block is tracked, so that teardown accounting catches a Block
// which is freed twice or never freed. A BoundedAllocator may be shared by
// the Caches of many connections, and is safe for concurrent use.
type BoundedAllocator struct {
	// Limit is the maximum number of live Blocks. Zero means no Blocks may
	// be allocated at all.
	Limit int

	mu    sync.Mutex
	live  map[*Block]struct{}
	total int
}

// NewBoundedAllocator returns a BoundedAllocator permitting |limit| live Blocks.
func NewBoundedAllocator(limit int) *BoundedAllocator {
	return &BoundedAllocator{Limit: limit, live: make(map[*Block]struct{})}
}

// Allocate returns a new zeroed Block, or ErrNoMem if Limit Blocks are live.
func (a *BoundedAllocator) Allocate(index int64) (*Block, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.live) >= a.Limit {
		return nil, ErrNoMem
	} else if a.live == nil {
		a.live = make(map[*Block]struct{})
	}
	var b = &Block{Index: index}
	a.live[b] = struct{}{}
	a.total++
	return b, nil
}

// Free releases the Block. Freeing a Block which isn't live, because it was
// already freed or never came from this allocator, is a programming error
// and panics.
func (a *BoundedAllocator) Free(b *Block) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.live[b]; !ok {
		panic(fmt.Sprintf("free of block %d which is not live", b.Index))
	}
	delete(a.live, b)
}

// Live returns the number of allocated Blocks which have not been freed.
func (a *BoundedAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// Allocated returns the cumulative number of successful allocations.
func (a *BoundedAllocator) Allocated() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}
