package amiga

import "encoding/binary"

// Block layout constants shared by header, list, and root blocks.
const (
	// TableSize is the number of 32-bit slots in a block's address table
	// (hash table for directories, data-block table for files).
	TableSize = 72

	offsetPrimaryType = 0
	offsetHeaderKey   = 4
	offsetHighSeq     = 8
	offsetFirstData   = 16
	offsetChecksum    = 20
	offsetTable       = 24
	offsetSecondary   = 508

	// bitmapChecksumOffset is the checksum word offset within a bitmap
	// block, distinct from header/list/root blocks.
	bitmapChecksumOffset = 0
)

// Primary block types (offset 0).
const (
	PrimaryTypeHeader int32 = 2
	PrimaryTypeList   int32 = 16
	PrimaryTypeData   int32 = 8
)

// Secondary block types (offset 508).
const (
	SecondaryTypeRoot           int32 = 1
	SecondaryTypeDirectory      int32 = 2
	SecondaryTypeFile           int32 = -3
	SecondaryTypeSoftLink       int32 = 3
	SecondaryTypeHardLinkDir    int32 = 4
	SecondaryTypeHardLinkFile   int32 = -4
)

// Block is a (image, address) pair offering offset-checked field access to
// one 512-byte block.
type Block struct {
	img  *Image
	Addr uint32
}

// NewBlock builds a block accessor for the given address. It does not
// validate the address against the image bounds; that happens on first
// access.
func NewBlock(img *Image, addr uint32) Block {
	return Block{img: img, Addr: addr}
}

func (b Block) bytes() ([]byte, error) {
	return b.img.BlocksMut(b.Addr, 1)
}

func checkOffset(offset, length int) error {
	if offset < 0 || offset+length > BlockSize {
		return &DiskInvalidBlockOffsetError{Offset: offset}
	}
	return nil
}

// Byte reads a single byte at offset.
func (b Block) Byte(offset int) (byte, error) {
	if err := checkOffset(offset, 1); err != nil {
		return 0, err
	}
	data, err := b.bytes()
	if err != nil {
		return 0, err
	}
	return data[offset], nil
}

// SetByte writes a single byte at offset.
func (b Block) SetByte(offset int, v byte) error {
	if err := checkOffset(offset, 1); err != nil {
		return err
	}
	data, err := b.bytes()
	if err != nil {
		return err
	}
	data[offset] = v
	return nil
}

// ByteArray reads length bytes starting at offset.
func (b Block) ByteArray(offset, length int) ([]byte, error) {
	if err := checkOffset(offset, length); err != nil {
		return nil, err
	}
	data, err := b.bytes()
	if err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, data[offset:offset+length])
	return out, nil
}

// SetByteArray writes value starting at offset, zero-padding or truncating
// to exactly length bytes.
func (b Block) SetByteArray(offset, length int, value []byte) error {
	if err := checkOffset(offset, length); err != nil {
		return err
	}
	data, err := b.bytes()
	if err != nil {
		return err
	}
	region := data[offset : offset+length]
	for i := range region {
		region[i] = 0
	}
	copy(region, value)
	return nil
}

// Uint32 reads a big-endian 32-bit unsigned integer at offset.
func (b Block) Uint32(offset int) (uint32, error) {
	if err := checkOffset(offset, 4); err != nil {
		return 0, err
	}
	data, err := b.bytes()
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(data[offset : offset+4]), nil
}

// SetUint32 writes a big-endian 32-bit unsigned integer at offset.
func (b Block) SetUint32(offset int, v uint32) error {
	if err := checkOffset(offset, 4); err != nil {
		return err
	}
	data, err := b.bytes()
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint32(data[offset:offset+4], v)
	return nil
}

// Int32 reads a big-endian 32-bit signed integer at offset.
func (b Block) Int32(offset int) (int32, error) {
	v, err := b.Uint32(offset)
	return int32(v), err
}

// SetInt32 writes a big-endian 32-bit signed integer at offset.
func (b Block) SetInt32(offset int, v int32) error {
	return b.SetUint32(offset, uint32(v))
}

// Name reads a length-prefixed ASCII name field: one length byte followed
// by up to maxLen bytes of name data, the field itself occupying
// 1+maxLen bytes on disk.
func (b Block) Name(offset, maxLen int) (string, error) {
	n, err := b.Byte(offset)
	if err != nil {
		return "", err
	}
	if int(n) > maxLen {
		return "", &InvalidNameLengthError{Length: int(n)}
	}
	raw, err := b.ByteArray(offset+1, maxLen)
	if err != nil {
		return "", err
	}
	return string(raw[:n]), nil
}

// SetName writes a length-prefixed ASCII name field, zero-padding the
// remainder of the maxLen-byte name area.
func (b Block) SetName(offset, maxLen int, name string) error {
	if len(name) > maxLen {
		return &InvalidNameLengthError{Length: len(name)}
	}
	if err := b.SetByte(offset, byte(len(name))); err != nil {
		return err
	}
	return b.SetByteArray(offset+1, maxLen, []byte(name))
}

// DateTriplet reads the (days, minutes, ticks) timestamp triplet at offset.
func (b Block) DateTriplet(offset int) (DateTriplet, error) {
	days, err := b.Uint32(offset)
	if err != nil {
		return DateTriplet{}, err
	}
	mins, err := b.Uint32(offset + 4)
	if err != nil {
		return DateTriplet{}, err
	}
	ticks, err := b.Uint32(offset + 8)
	if err != nil {
		return DateTriplet{}, err
	}
	return DateTriplet{Days: days, Minutes: mins, Ticks: ticks}, nil
}

// SetDateTriplet writes a timestamp triplet at offset.
func (b Block) SetDateTriplet(offset int, t DateTriplet) error {
	if err := b.SetUint32(offset, t.Days); err != nil {
		return err
	}
	if err := b.SetUint32(offset+4, t.Minutes); err != nil {
		return err
	}
	return b.SetUint32(offset+8, t.Ticks)
}

// PrimaryType reads and validates the block's primary type field.
func (b Block) PrimaryType() (int32, error) {
	v, err := b.Int32(offsetPrimaryType)
	if err != nil {
		return 0, err
	}
	switch v {
	case PrimaryTypeHeader, PrimaryTypeList, PrimaryTypeData:
		return v, nil
	default:
		return 0, &InvalidFilesystemBlockPrimaryTypeError{Value: v}
	}
}

// ExpectPrimaryType validates the block's primary type equals want.
func (b Block) ExpectPrimaryType(want int32) error {
	got, err := b.PrimaryType()
	if err != nil {
		return err
	}
	if got != want {
		return &UnexpectedFilesystemBlockPrimaryTypeError{Value: got}
	}
	return nil
}

// SecondaryType reads and validates the block's secondary type field.
func (b Block) SecondaryType() (int32, error) {
	v, err := b.Int32(offsetSecondary)
	if err != nil {
		return 0, err
	}
	switch v {
	case SecondaryTypeRoot, SecondaryTypeDirectory, SecondaryTypeFile,
		SecondaryTypeSoftLink, SecondaryTypeHardLinkDir, SecondaryTypeHardLinkFile:
		return v, nil
	default:
		return 0, &InvalidFilesystemBlockSecondaryTypeError{Value: v}
	}
}

// ExpectSecondaryType validates the block's secondary type equals want.
func (b Block) ExpectSecondaryType(want int32) error {
	got, err := b.SecondaryType()
	if err != nil {
		return err
	}
	if got != want {
		return &UnexpectedFilesystemBlockSecondaryTypeError{Value: got}
	}
	return nil
}

// computeChecksum treats data (exactly one block) as 128 big-endian 32-bit
// words and returns the wrapping two's-complement negation of the sum of
// all words except the one at checksumOffset.
func computeChecksum(data []byte, checksumOffset int) uint32 {
	var sum uint32
	for i := 0; i < BlockSize; i += 4 {
		if i == checksumOffset {
			continue
		}
		sum += binary.BigEndian.Uint32(data[i : i+4])
	}
	return -sum
}

// WriteChecksum recomputes the header/list/root block checksum (stored at byte
// offset 20) and writes it.
func (b Block) WriteChecksum() error {
	data, err := b.bytes()
	if err != nil {
		return err
	}
	sum := computeChecksum(data, offsetChecksum)
	return b.SetUint32(offsetChecksum, sum)
}

// VerifyChecksum recomputes the header/list/root block checksum and
// compares it against the stored value.
func (b Block) VerifyChecksum() (bool, error) {
	data, err := b.bytes()
	if err != nil {
		return false, err
	}
	stored := binary.BigEndian.Uint32(data[offsetChecksum : offsetChecksum+4])
	return computeChecksum(data, offsetChecksum) == stored, nil
}

// WriteBitmapChecksum recomputes and writes a bitmap block's checksum,
// stored at byte offset 0 rather than 20.
func (b Block) WriteBitmapChecksum() error {
	data, err := b.bytes()
	if err != nil {
		return err
	}
	sum := computeChecksum(data, bitmapChecksumOffset)
	return b.SetUint32(bitmapChecksumOffset, sum)
}

// VerifyBitmapChecksum recomputes and compares a bitmap block's checksum.
func (b Block) VerifyBitmapChecksum() (bool, error) {
	data, err := b.bytes()
	if err != nil {
		return false, err
	}
	stored := binary.BigEndian.Uint32(data[0:4])
	return computeChecksum(data, bitmapChecksumOffset) == stored, nil
}

// TableEntry reads the address-table slot at index i (0..71). Slots are
// stored highest-index-first: slot 0 sits at the last table position.
func (b Block) TableEntry(i int) (uint32, error) {
	if i < 0 || i >= TableSize {
		return 0, &InvalidDataBlockIndexError{Index: i}
	}
	return b.Uint32(offsetTable + (TableSize-1-i)*4)
}

// SetTableEntry writes the address-table slot at index i.
func (b Block) SetTableEntry(i int, v uint32) error {
	if i < 0 || i >= TableSize {
		return &InvalidDataBlockIndexError{Index: i}
	}
	return b.SetUint32(offsetTable+(TableSize-1-i)*4, v)
}

// HeaderKey reads the block's self-address field.
func (b Block) HeaderKey() (uint32, error) { return b.Uint32(offsetHeaderKey) }

// SetHeaderKey writes the block's self-address field.
func (b Block) SetHeaderKey(v uint32) error { return b.SetUint32(offsetHeaderKey, v) }

// HighSeq reads the count of used entries in the address table.
func (b Block) HighSeq() (uint32, error) { return b.Uint32(offsetHighSeq) }

// SetHighSeq writes the count of used entries in the address table.
func (b Block) SetHighSeq(v uint32) error { return b.SetUint32(offsetHighSeq, v) }

// FirstData reads the file header's first-data-block pointer (OFS only).
func (b Block) FirstData() (uint32, error) { return b.Uint32(offsetFirstData) }

// SetFirstData writes the file header's first-data-block pointer (OFS only).
func (b Block) SetFirstData(v uint32) error { return b.SetUint32(offsetFirstData, v) }

// SetPrimaryType writes the block's primary type field without validation.
func (b Block) SetPrimaryType(v int32) error { return b.SetInt32(offsetPrimaryType, v) }

// SetSecondaryType writes the block's secondary type field without
// validation.
func (b Block) SetSecondaryType(v int32) error { return b.SetInt32(offsetSecondary, v) }

// Zero fills the entire block with zero bytes.
func (b Block) Zero() error {
	data, err := b.bytes()
	if err != nil {
		return err
	}
	for i := range data {
		data[i] = 0
	}
	return nil
}

// FillBytes fills the entire block with the given byte value.
func (b Block) FillBytes(v byte) error {
	data, err := b.bytes()
	if err != nil {
		return err
	}
	for i := range data {
		data[i] = v
	}
	return nil
}
