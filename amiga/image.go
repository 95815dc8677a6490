package amiga

// BlockSize is the fixed size in bytes of every block on an Amiga floppy
// image: one sector.
const BlockSize = 512

// Recognized image geometries. Partitioned/hard-disk images are out of
// scope; only the two floppy sizes below are accepted by ImageFromBytes and
// produced by EmptyImage.
const (
	// DDBlockCount is the block count of a double-density (880KB) floppy image.
	DDBlockCount = 1760
	// HDBlockCount is the block count of a high-density (1760KB) floppy image.
	HDBlockCount = 3520
)

// FloppyKind selects the geometry of an empty image created with EmptyImage.
type FloppyKind int

const (
	// DD is a double-density 880KB floppy (1760 blocks).
	DD FloppyKind = iota
	// HD is a high-density 1760KB floppy (3520 blocks).
	HD
)

func (k FloppyKind) blockCount() int {
	if k == HD {
		return HDBlockCount
	}
	return DDBlockCount
}

// Image is a flat byte buffer partitioned into fixed-size blocks addressed
// by a numeric LBA. It performs no caching: every read/write goes straight
// against the backing slice.
type Image struct {
	data []byte
}

// ImageFromBytes wraps a raw byte buffer as an Image. The buffer's length
// must equal a recognized DD or HD image size.
func ImageFromBytes(buf []byte) (*Image, error) {
	switch len(buf) {
	case DDBlockCount * BlockSize, HDBlockCount * BlockSize:
		return &Image{data: buf}, nil
	default:
		return nil, &DiskInvalidSizeError{Size: len(buf)}
	}
}

// EmptyImage allocates a zero-filled image of the given geometry.
func EmptyImage(kind FloppyKind) *Image {
	return &Image{data: make([]byte, kind.blockCount()*BlockSize)}
}

// BlockCount returns the number of addressable blocks in the image.
func (img *Image) BlockCount() uint32 {
	return uint32(len(img.data) / BlockSize)
}

// Data returns the whole image as a byte slice, suitable for persisting to
// a host file.
func (img *Image) Data() []byte {
	return img.data
}

// Blocks returns a slice covering count consecutive blocks starting at addr,
// for reading. The slice aliases the image buffer; it is not a copy.
func (img *Image) Blocks(addr uint32, count uint32) ([]byte, error) {
	start, end, err := img.blockRange(addr, count)
	if err != nil {
		return nil, err
	}
	return img.data[start:end], nil
}

// BlocksMut returns a mutable slice covering count consecutive blocks
// starting at addr.
func (img *Image) BlocksMut(addr uint32, count uint32) ([]byte, error) {
	start, end, err := img.blockRange(addr, count)
	if err != nil {
		return nil, err
	}
	return img.data[start:end], nil
}

func (img *Image) blockRange(addr uint32, count uint32) (int, int, error) {
	if addr+count > img.BlockCount() || addr+count < addr {
		return 0, 0, &DiskInvalidLBAAddressError{Addr: addr}
	}
	start := int(addr) * BlockSize
	end := int(addr+count) * BlockSize
	return start, end, nil
}
