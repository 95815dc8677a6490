package amiga

// OFS data block layout: a 24-byte header followed by payload.
const (
	ofsHeaderSize    = 24
	ofsDataOffset    = ofsHeaderSize
	ofsDataSize      = BlockSize - ofsHeaderSize // 488

	ofsOffsetPrimaryType = 0
	ofsOffsetHeaderKey   = 4
	ofsOffsetSeqNum      = 8
	ofsOffsetDataSize    = 12
	ofsOffsetNextData    = 16
	ofsOffsetChecksum    = 20
)

// ffsDataSize is the usable payload of an FFS data block: the whole block,
// no per-block header.
const ffsDataSize = BlockSize

// DataBlockGeometry describes the flavor-dependent layout of a file's data
// blocks.
type DataBlockGeometry struct {
	// DataOffset is the byte offset of payload data within a data block.
	DataOffset int
	// DataSize is the maximum payload bytes held by one data block.
	DataSize int
}

// GeometryFor returns the data-block geometry for flavor.
func GeometryFor(flavor Flavor) DataBlockGeometry {
	if flavor == FFS {
		return DataBlockGeometry{DataOffset: 0, DataSize: ffsDataSize}
	}
	return DataBlockGeometry{DataOffset: ofsDataOffset, DataSize: ofsDataSize}
}

// OFSDataBlock is an OFS data block accessor: primary type, owning header
// address, 1-based sequence number, used payload size, next-data pointer,
// and checksum, followed by up to 488 payload bytes.
type OFSDataBlock struct {
	Block
}

// NewOFSDataBlock wraps addr as an OFS data block accessor.
func NewOFSDataBlock(img *Image, addr uint32) OFSDataBlock {
	return OFSDataBlock{Block: NewBlock(img, addr)}
}

// Init zero-fills the block and writes the primary type, header-key, and
// sequence number fields. The caller is responsible for the checksum.
func (d OFSDataBlock) Init(headerKey uint32, seqNum uint32) error {
	if err := d.Zero(); err != nil {
		return err
	}
	if err := d.SetInt32(ofsOffsetPrimaryType, PrimaryTypeData); err != nil {
		return err
	}
	if err := d.SetUint32(ofsOffsetHeaderKey, headerKey); err != nil {
		return err
	}
	return d.SetUint32(ofsOffsetSeqNum, seqNum)
}

// DataSize reads the number of valid payload bytes stored in this block.
func (d OFSDataBlock) DataSize() (uint32, error) { return d.Uint32(ofsOffsetDataSize) }

// SetDataSize writes the number of valid payload bytes stored in this block.
func (d OFSDataBlock) SetDataSize(v uint32) error { return d.SetUint32(ofsOffsetDataSize, v) }

// NextData reads the address of the next data block in this file's
// singly-linked OFS chain, or 0 if this is the last block.
func (d OFSDataBlock) NextData() (uint32, error) { return d.Uint32(ofsOffsetNextData) }

// SetNextData writes the next-data-block pointer.
func (d OFSDataBlock) SetNextData(v uint32) error { return d.SetUint32(ofsOffsetNextData, v) }

// WriteChecksum recomputes and writes this data block's checksum, stored at
// the same byte offset (20) as header/list blocks.
func (d OFSDataBlock) WriteChecksum() error {
	return d.Block.WriteChecksum()
}

// Payload returns the length-byte slice of payload data starting at the
// OFS payload offset.
func (d OFSDataBlock) Payload(length int) ([]byte, error) {
	return d.ByteArray(ofsDataOffset, length)
}

// WritePayloadAt writes data at the given in-block offset (0..487) within
// the OFS payload area.
func (d OFSDataBlock) WritePayloadAt(offset int, data []byte) error {
	return d.SetByteArray(ofsDataOffset+offset, len(data), data)
}

// ReadPayloadAt reads length bytes of payload data at the given in-block
// offset within the OFS payload area.
func (d OFSDataBlock) ReadPayloadAt(offset, length int) ([]byte, error) {
	return d.ByteArray(ofsDataOffset+offset, length)
}

// FFSDataBlock is an FFS data block: a raw 512-byte payload with no header
// or checksum of its own.
type FFSDataBlock struct {
	Block
}

// NewFFSDataBlock wraps addr as an FFS data block accessor.
func NewFFSDataBlock(img *Image, addr uint32) FFSDataBlock {
	return FFSDataBlock{Block: NewBlock(img, addr)}
}

// WriteAt writes data at the given in-block offset.
func (d FFSDataBlock) WriteAt(offset int, data []byte) error {
	return d.SetByteArray(offset, len(data), data)
}

// ReadAt reads length bytes at the given in-block offset.
func (d FFSDataBlock) ReadAt(offset, length int) ([]byte, error) {
	return d.ByteArray(offset, length)
}
