package amiga

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Flavor selects the on-disk file-content format: OFS carries a per-block
// header and checksum on every data block, FFS does not.
type Flavor int

const (
	// OFS is the Original File System.
	OFS Flavor = iota
	// FFS is the Fast File System.
	FFS
)

// String returns "OFS" or "FFS".
func (f Flavor) String() string {
	if f == FFS {
		return "FFS"
	}
	return "OFS"
}

// bootBlockSize is the size in bytes of the boot block: two sectors.
const bootBlockSize = 2 * BlockSize

const (
	bootFlagFFS           = 1 << 0
	bootFlagInternational = 1 << 1
	bootFlagCache         = 1 << 2

	bootOffsetMagic    = 0
	bootOffsetFlags    = 3
	bootOffsetChecksum = 4
	bootOffsetRootAddr = 8
	bootOffsetCode      = 12
)

var bootMagic = [3]byte{'D', 'O', 'S'}

// BootBlockInfo is the decoded content of an image's boot block.
type BootBlockInfo struct {
	Flavor          Flavor
	International   bool
	Cache           bool
	RootBlockAddr   uint32
}

// ReadBootBlock reads and validates the two-sector boot record at the start
// of the image.
func ReadBootBlock(img *Image) (BootBlockInfo, error) {
	data, err := img.Blocks(0, 2)
	if err != nil {
		return BootBlockInfo{}, errors.Wrap(err, "error reading boot block")
	}

	if data[0] != bootMagic[0] || data[1] != bootMagic[1] || data[2] != bootMagic[2] {
		return BootBlockInfo{}, errors.Wrap(ErrCorruptedImageFile, "bad boot block magic")
	}

	flags := data[bootOffsetFlags]
	info := BootBlockInfo{
		International: flags&bootFlagInternational != 0,
		Cache:         flags&bootFlagCache != 0,
		RootBlockAddr: binary.BigEndian.Uint32(data[bootOffsetRootAddr : bootOffsetRootAddr+4]),
	}
	if flags&bootFlagFFS != 0 {
		info.Flavor = FFS
	} else {
		info.Flavor = OFS
	}

	stored := binary.BigEndian.Uint32(data[bootOffsetChecksum : bootOffsetChecksum+4])
	if stored != 0 {
		if computed := bootChecksum(data); computed != stored {
			return BootBlockInfo{}, errors.Wrap(ErrCorruptedImageFile, "bad boot block checksum")
		}
	}

	return info, nil
}

// WriteBootBlock zeroes the two boot sectors and writes the magic, flags,
// root block address, a zeroed boot-code payload, and the checksum. If
// rootAddr is zero, it defaults to the image's midpoint block.
func WriteBootBlock(img *Image, info BootBlockInfo, rootAddr uint32) error {
	data, err := img.BlocksMut(0, 2)
	if err != nil {
		return errors.Wrap(err, "error writing boot block")
	}
	for i := range data {
		data[i] = 0
	}

	if rootAddr == 0 {
		rootAddr = img.BlockCount() / 2
	}

	copy(data[bootOffsetMagic:], bootMagic[:])

	var flags byte
	if info.Flavor == FFS {
		flags |= bootFlagFFS
	}
	if info.International {
		flags |= bootFlagInternational
	}
	if info.Cache {
		flags |= bootFlagCache
	}
	data[bootOffsetFlags] = flags

	binary.BigEndian.PutUint32(data[bootOffsetRootAddr:bootOffsetRootAddr+4], rootAddr)

	checksum := bootChecksum(data)
	binary.BigEndian.PutUint32(data[bootOffsetChecksum:bootOffsetChecksum+4], checksum)

	return nil
}

// bootChecksum treats the boot block's 1024 bytes as 256 big-endian 32-bit
// words and returns the one's complement of the sum of all words except the
// checksum word itself.
func bootChecksum(data []byte) uint32 {
	var sum uint32
	for i := 0; i < bootBlockSize; i += 4 {
		if i == bootOffsetChecksum {
			continue
		}
		sum += binary.BigEndian.Uint32(data[i : i+4])
	}
	return ^sum
}
