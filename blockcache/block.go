package blockcache

import "bytes"

// BlockSize is the fixed size, in bytes, of each cached Block.
const BlockSize = 64

// Block is a BlockSize unit of cached file content. It covers the byte range
// [Index*BlockSize, (Index+1)*BlockSize) of its file.
type Block struct {
	Index int64
	Data  [BlockSize]byte
}

// Offset returns the file offset of the first byte of the Block.
func (b *Block) Offset() int64 { return b.Index * BlockSize }

var zeroBlock [BlockSize]byte

// IsZero returns true iff every byte of |p| is zero. An empty |p| is zero.
func IsZero(p []byte) bool {
	for len(p) > BlockSize {
		if !bytes.Equal(p[:BlockSize], zeroBlock[:]) {
			return false
		}
		p = p[BlockSize:]
	}
	return bytes.Equal(p, zeroBlock[:len(p)])
}

// blockIndex maps a file offset to the index of its covering Block, and the
// offset of the byte within that Block.
func blockIndex(offset int64) (index int64, within int) {
	return offset / BlockSize, int(offset % BlockSize)
}
