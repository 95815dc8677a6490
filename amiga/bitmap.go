package amiga

import "math/bits"

// bitmapWordCount is the number of 32-bit words available for bit storage
// in one bitmap block: the block minus its 4-byte checksum.
const bitmapWordCount = (BlockSize - 4) / 4

// bitsPerBitmapBlock is the number of block addresses a single bitmap block
// can track.
const bitsPerBitmapBlock = bitmapWordCount * 32

// firstTrackedBlock is the first block address tracked by any bitmap:
// blocks 0 and 1 are boot blocks and are never tracked.
const firstTrackedBlock = 2

// NumBitmapBlocks returns the number of bitmap blocks required to track
// every block address in [2, blockCount).
func NumBitmapBlocks(blockCount uint32) int {
	tracked := int(blockCount) - firstTrackedBlock
	if tracked <= 0 {
		return 0
	}
	return (tracked + bitsPerBitmapBlock - 1) / bitsPerBitmapBlock
}

// bitmapBlockBase returns the first address tracked by bitmap block index i
// (0-based, in root bitmap-page-table order).
func bitmapBlockBase(i int) uint32 {
	return firstTrackedBlock + uint32(i*bitsPerBitmapBlock)
}

func wordOffsetFor(addr, base uint32) (word int, bit uint) {
	offset := addr - base
	return int(offset / 32), uint(offset % 32)
}

// InitBitmap allocates one bitmap block per NumBitmapBlocks, records their
// addresses in the root's bitmap-page table, fills each with all-free
// (0xFF) bits, then reserves the root block address and every bitmap block
// address. It returns the allocated bitmap block addresses in page-table
// order.
func InitBitmap(img *Image, root RootBlock, rootAddr uint32) ([]uint32, error) {
	n := NumBitmapBlocks(img.BlockCount())
	addrs := make([]uint32, n)

	for i := 0; i < n; i++ {
		addr := rootAddr + 1 + uint32(i)
		addrs[i] = addr

		blk := NewBlock(img, addr)
		if err := blk.FillBytes(0xFF); err != nil {
			return nil, err
		}
		if err := blk.WriteBitmapChecksum(); err != nil {
			return nil, err
		}
		if err := root.SetBitmapPage(i, addr); err != nil {
			return nil, err
		}
	}
	for i := n; i < bitmapPageCount; i++ {
		if err := root.SetBitmapPage(i, 0); err != nil {
			return nil, err
		}
	}
	if err := root.SetBitmapValid(true); err != nil {
		return nil, err
	}
	if err := root.WriteChecksum(); err != nil {
		return nil, err
	}

	if err := Reserve(img, addrs, rootAddr); err != nil {
		return nil, err
	}
	for _, addr := range addrs {
		if err := Reserve(img, addrs, addr); err != nil {
			return nil, err
		}
	}

	return addrs, nil
}

// Reserve clears (allocates) the bit for addr in the bitmap block that
// tracks it and rewrites that bitmap block's checksum.
func Reserve(img *Image, bitmapAddrs []uint32, addr uint32) error {
	idx, base, err := bitmapBlockFor(bitmapAddrs, addr)
	if err != nil {
		return err
	}
	word, bit := wordOffsetFor(addr, base)

	blk := NewBlock(img, bitmapAddrs[idx])
	v, err := blk.Uint32(4 + word*4)
	if err != nil {
		return err
	}
	v &^= 1 << bit
	if err := blk.SetUint32(4+word*4, v); err != nil {
		return err
	}
	return blk.WriteBitmapChecksum()
}

// Free sets (releases) the bit for addr in the bitmap block that tracks it
// and rewrites that bitmap block's checksum.
func Free(img *Image, bitmapAddrs []uint32, addr uint32) error {
	if addr >= img.BlockCount() {
		return &DiskInvalidLBAAddressError{Addr: addr}
	}
	idx, base, err := bitmapBlockFor(bitmapAddrs, addr)
	if err != nil {
		return err
	}
	word, bit := wordOffsetFor(addr, base)

	blk := NewBlock(img, bitmapAddrs[idx])
	v, err := blk.Uint32(4 + word*4)
	if err != nil {
		return err
	}
	v |= 1 << bit
	if err := blk.SetUint32(4+word*4, v); err != nil {
		return err
	}
	return blk.WriteBitmapChecksum()
}

// ReserveFree scans the bitmap blocks in order for the lowest free
// (highest-priority) address, reserves it, and returns it. It fails with
// ErrNoSpaceLeft if no block is free.
func ReserveFree(img *Image, bitmapAddrs []uint32) (uint32, error) {
	for i, bitmapAddr := range bitmapAddrs {
		blk := NewBlock(img, bitmapAddr)
		for word := 0; word < bitmapWordCount; word++ {
			v, err := blk.Uint32(4 + word*4)
			if err != nil {
				return 0, err
			}
			if v == 0 {
				continue
			}
			bit := bits.TrailingZeros32(v)
			addr := bitmapBlockBase(i) + uint32(word*32+bit)
			if addr >= img.BlockCount() {
				continue
			}

			v &^= 1 << uint(bit)
			if err := blk.SetUint32(4+word*4, v); err != nil {
				return 0, err
			}
			if err := blk.WriteBitmapChecksum(); err != nil {
				return 0, err
			}
			return addr, nil
		}
	}
	return 0, ErrNoSpaceLeft
}

// FreeCount sums the free bits across every tracked bitmap block, masking
// off any bits beyond the image's actual block count in the final block.
func FreeCount(img *Image, bitmapAddrs []uint32) (uint32, error) {
	var total uint32
	blockCount := img.BlockCount()

	for i, bitmapAddr := range bitmapAddrs {
		blk := NewBlock(img, bitmapAddr)
		base := bitmapBlockBase(i)

		for word := 0; word < bitmapWordCount; word++ {
			v, err := blk.Uint32(4 + word*4)
			if err != nil {
				return 0, err
			}

			wordBase := base + uint32(word*32)
			for bit := 0; bit < 32; bit++ {
				if wordBase+uint32(bit) >= blockCount {
					v &^= 1 << uint(bit)
				}
			}
			total += uint32(bits.OnesCount32(v))
		}
	}
	return total, nil
}

func bitmapBlockFor(bitmapAddrs []uint32, addr uint32) (idx int, base uint32, err error) {
	for i := range bitmapAddrs {
		b := bitmapBlockBase(i)
		if addr >= b && addr < b+bitsPerBitmapBlock {
			return i, b, nil
		}
	}
	return 0, 0, &DiskInvalidLBAAddressError{Addr: addr}
}
