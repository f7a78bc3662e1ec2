package blockcache

import (
	"fmt"
	"sort"
)

// ElisionPolicy determines when a write segment of all-zero bytes is skipped.
type ElisionPolicy int

const (
	// ElideUnbacked skips an all-zero segment only if no Block yet covers it.
	// A zero write into an existing Block is stored, so that reads always
	// return the most recent write of every byte which has a Block.
	ElideUnbacked ElisionPolicy = iota
	// ElideAlways skips every all-zero segment, even where a Block exists,
	// so zero writes never clear previously written non-zero bytes. It
	// minimizes Blocks touched, but is unsafe wherever a file is invalidated
	// by zeroing it: a journal whose header is zeroed (as in journal_mode
	// PERSIST) would remain hot.
	ElideAlways
)

func (p ElisionPolicy) String() string {
	switch p {
	case ElideUnbacked:
		return "unbacked"
	case ElideAlways:
		return "always"
	default:
		return fmt.Sprintf("ElisionPolicy(%d)", int(p))
	}
}

func (p ElisionPolicy) MarshalFlag() (string, error) { return p.String(), nil }

// UnmarshalFlag parses an ElisionPolicy from its String form.
func (p *ElisionPolicy) UnmarshalFlag(value string) error {
	switch value {
	case "unbacked":
		*p = ElideUnbacked
	case "always":
		*p = ElideAlways
	default:
		return fmt.Errorf("unknown elision policy %q", value)
	}
	return nil
}

// Cache is a sparse, in-memory representation of a single file. Content is
// held in Blocks ordered on ascending, unique Index, and the Cache tracks the
// logical size of the file as the high-water mark of all writes.
type Cache struct {
	// Elision is the policy for skipping all-zero writes.
	// NewCache initializes it to ElideUnbacked.
	Elision ElisionPolicy

	alloc  Allocator
	blocks []*Block // Ordered on ascending Block.Index.
	size   int64
}

// NewCache returns an empty Cache drawing Blocks from |alloc|. A nil |alloc|
// uses the HeapAllocator.
func NewCache(alloc Allocator) *Cache {
	if alloc == nil {
		alloc = HeapAllocator{}
	}
	return &Cache{Elision: ElideUnbacked, alloc: alloc}
}

// Write stores |p| at file |offset|. The write is split into Block-aligned
// segments, each stored in ascending offset order, and the logical size is
// then extended to cover |offset + len(p)|.
//
// If a Block cannot be allocated Write returns the number of bytes stored
// prior to the failure, and the Allocator's error (ErrNoMem). Segments
// already stored remain applied, and the logical size is not updated:
// a failed Write leaves the written range indeterminate.
func (c *Cache) Write(offset int64, p []byte) (n int, err error) {
	checkOffset(offset)

	for n != len(p) {
		var _, within = blockIndex(offset + int64(n))
		var seg = min(BlockSize-within, len(p)-n)

		if err = c.store(offset+int64(n), p[n:n+seg]); err != nil {
			writtenBytesTotal.Add(float64(n))
			return n, err
		}
		n += seg
	}
	if end := offset + int64(len(p)); end > c.size {
		c.size = end
	}
	writtenBytesTotal.Add(float64(n))
	return n, nil
}

// Read fills |p| with file content beginning at |offset|. Ranges of |p|
// which no Block covers, including ranges whose writes were elided, are
// left untouched. Callers requiring zero-filled holes must clear |p| first.
func (c *Cache) Read(offset int64, p []byte) {
	checkOffset(offset)

	// Blocks are ordered, so each segment's search may begin from the
	// position of the last.
	var from int
	for n := 0; n != len(p); {
		var index, within = blockIndex(offset + int64(n))
		var seg = min(BlockSize-within, len(p)-n)

		var i, ok = c.search(from, index)
		if ok {
			copy(p[n:n+seg], c.blocks[i].Data[within:])
		}
		from, n = i, n+seg
	}
	readBytesTotal.Add(float64(len(p)))
}

// Size returns the logical size of the file: the largest |offset + len(p)|
// of any completed Write.
func (c *Cache) Size() int64 { return c.size }

// Len returns the number of materialized Blocks.
func (c *Cache) Len() int { return len(c.blocks) }

// Indices returns the Index of each materialized Block, in Cache order.
func (c *Cache) Indices() []int64 {
	var out = make([]int64, len(c.blocks))
	for i, b := range c.blocks {
		out[i] = b.Index
	}
	return out
}

// Destroy releases every Block to the Allocator, and resets the Cache to
// empty. Destroy of an empty or already-destroyed Cache is a no-op.
func (c *Cache) Destroy() {
	for i, b := range c.blocks {
		c.alloc.Free(b)
		c.blocks[i] = nil
	}
	blocksFreedTotal.Add(float64(len(c.blocks)))
	c.blocks, c.size = nil, 0
}

// String returns a debugging representation of the Cache.
func (c *Cache) String() string {
	return fmt.Sprintf("Cache<size: %d, blocks: %d, elision: %s>", c.size, len(c.blocks), c.Elision)
}

// store records a single segment |p|, which must not cross a Block boundary,
// at file |offset|.
func (c *Cache) store(offset int64, p []byte) error {
	var index, within = blockIndex(offset)
	var i, found = c.search(0, index)

	if IsZero(p) && (!found || c.Elision == ElideAlways) {
		elidedSegmentsTotal.Inc()
		return nil
	}

	if !found {
		// The Block is fully constructed before the Cache is touched, so an
		// allocation failure leaves |blocks| exactly as it was.
		var b, err = c.alloc.Allocate(index)
		if err != nil {
			allocFailuresTotal.Inc()
			return err
		}
		blocksAllocatedTotal.Inc()

		c.blocks = append(c.blocks, nil)
		copy(c.blocks[i+1:], c.blocks[i:])
		c.blocks[i] = b
	}
	copy(c.blocks[i].Data[within:], p)
	return nil
}

// search returns the position at or after |from| of the Block having
// |index|, and true, or the position at which it would be inserted, and false.
func (c *Cache) search(from int, index int64) (int, bool) {
	var tail = c.blocks[from:]
	var i = from + sort.Search(len(tail), func(j int) bool {
		return tail[j].Index >= index
	})
	return i, i != len(c.blocks) && c.blocks[i].Index == index
}

func checkOffset(offset int64) {
	if offset < 0 {
		panic(fmt.Sprintf("invalid negative offset %d", offset))
	}
}
