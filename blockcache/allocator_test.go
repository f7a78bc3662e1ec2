package blockcache

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoundedAllocatorAccounting(t *testing.T) {
	var a = NewBoundedAllocator(2)

	var b1, err = a.Allocate(3)
	require.NoError(t, err)
	require.Equal(t, int64(3), b1.Index)
	require.Equal(t, int64(3*BlockSize), b1.Offset())
	require.Equal(t, [BlockSize]byte{}, b1.Data)

	b2, err := a.Allocate(4)
	require.NoError(t, err)
	require.Equal(t, 2, a.Live())

	_, err = a.Allocate(5)
	require.Equal(t, ErrNoMem, err)

	a.Free(b1)
	require.Equal(t, 1, a.Live())

	// Freed capacity is available again.
	b3, err := a.Allocate(5)
	require.NoError(t, err)
	require.Equal(t, 3, a.Allocated())

	// A second free of |b1| can't stand in for the still-live |b3|.
	require.Panics(t, func() { a.Free(b1) })
	require.Equal(t, 2, a.Live())

	a.Free(b2)
	a.Free(b3)
	require.Equal(t, 0, a.Live())

	// Blocks of another allocator are never live here.
	var foreign, _ = HeapAllocator{}.Allocate(5)
	require.Panics(t, func() { a.Free(foreign) })
}

func TestBoundedAllocatorZeroValue(t *testing.T) {
	var a = &BoundedAllocator{Limit: 1}

	var b, err = a.Allocate(0)
	require.NoError(t, err)
	require.Equal(t, 1, a.Live())
	a.Free(b)
	require.Equal(t, 0, a.Live())
}

func TestBoundedAllocatorConcurrentCaches(t *testing.T) {
	var a = NewBoundedAllocator(1024)
	var wg sync.WaitGroup

	for i := 0; i != 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			var c = NewCache(a)
			var buf = bytes.Repeat([]byte{byte(i + 1)}, 10*BlockSize)
			if _, err := c.Write(0, buf); err != nil {
				t.Error(err)
			}
			c.Destroy()
		}(i)
	}
	wg.Wait()

	require.Equal(t, 0, a.Live())
	require.Equal(t, 80, a.Allocated())
}

func TestZeroLimitAllocatorRefusesEverything(t *testing.T) {
	var c = NewCache(NewBoundedAllocator(0))

	// Zero writes need no Blocks, and succeed.
	var n, err = c.Write(0, make([]byte, 10))
	require.NoError(t, err)
	require.Equal(t, 10, n)

	n, err = c.Write(0, []byte{1})
	require.Equal(t, ErrNoMem, err)
	require.Equal(t, 0, n)
}

func TestHeapAllocator(t *testing.T) {
	var b, err = HeapAllocator{}.Allocate(9)
	require.NoError(t, err)
	require.Equal(t, int64(9), b.Index)
	HeapAllocator{}.Free(b)
}
