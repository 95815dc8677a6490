package amiga

// Tail-of-block offsets shared by every header and list block (root,
// directory, file, link). See spec field map: these are the "from end of
// block" offsets -92, -80..-40, -16, -12, -8 translated to absolute byte
// offsets within the 512-byte block.
const (
	offsetAlterationDate = 420 // 12 bytes: days, minutes, ticks
	offsetName           = 432 // 1 length byte + up to 30 name bytes
	maxNameLength         = 30
	offsetHashChainNext  = 496
	offsetParent         = 500
	offsetExtension      = 504
)

// Root-block-only tail offsets.
const (
	offsetBitmapValid      = 312
	offsetBitmapPages      = 316
	bitmapPageCount        = 25
	offsetDiskAlteration   = 472
	offsetCreationDate     = 484

	bitmapValidMagic uint32 = 0xFFFFFFFF
)

// HeaderBlock is a Block known to carry the common header/list tail fields:
// alteration date, name, hash-chain-next, parent, and extension-list
// pointer. It applies to root, directory, file, soft-link, hard-link, and
// file-extension (list) blocks alike.
type HeaderBlock struct {
	Block
}

// NewHeaderBlock wraps addr as a header/list block accessor.
func NewHeaderBlock(img *Image, addr uint32) HeaderBlock {
	return HeaderBlock{Block: NewBlock(img, addr)}
}

// AlterationDate reads the block's alteration timestamp.
func (h HeaderBlock) AlterationDate() (DateTriplet, error) {
	return h.DateTriplet(offsetAlterationDate)
}

// SetAlterationDate writes the block's alteration timestamp.
func (h HeaderBlock) SetAlterationDate(t DateTriplet) error {
	return h.SetDateTriplet(offsetAlterationDate, t)
}

// EntryName reads the block's name field.
func (h HeaderBlock) EntryName() (string, error) {
	return h.Name(offsetName, maxNameLength)
}

// SetEntryName writes the block's name field after validating it with
// CheckName.
func (h HeaderBlock) SetEntryName(name string) error {
	if err := CheckName(name); err != nil {
		return err
	}
	return h.SetName(offsetName, maxNameLength, name)
}

// HashChainNext reads the next header-block address in this block's
// hash-table collision chain, or 0 if this is the chain's end.
func (h HeaderBlock) HashChainNext() (uint32, error) {
	return h.Uint32(offsetHashChainNext)
}

// SetHashChainNext writes the next pointer in this block's hash-chain.
func (h HeaderBlock) SetHashChainNext(v uint32) error {
	return h.SetUint32(offsetHashChainNext, v)
}

// Parent reads the address of this block's parent directory.
func (h HeaderBlock) Parent() (uint32, error) {
	return h.Uint32(offsetParent)
}

// SetParent writes the address of this block's parent directory.
func (h HeaderBlock) SetParent(v uint32) error {
	return h.SetUint32(offsetParent, v)
}

// ExtensionPointer reads the address of the next file-extension (list)
// block continuing this block's data-block table, or 0 if none.
func (h HeaderBlock) ExtensionPointer() (uint32, error) {
	return h.Uint32(offsetExtension)
}

// SetExtensionPointer writes the file-extension chain pointer.
func (h HeaderBlock) SetExtensionPointer(v uint32) error {
	return h.SetUint32(offsetExtension, v)
}

// RootBlock is the HeaderBlock at the volume's root: in addition to the
// common header fields it carries the bitmap-page table and two extra
// timestamps.
type RootBlock struct {
	HeaderBlock
}

// NewRootBlock wraps addr as a root block accessor.
func NewRootBlock(img *Image, addr uint32) RootBlock {
	return RootBlock{HeaderBlock: NewHeaderBlock(img, addr)}
}

// BitmapValid reports whether the root's bitmap is marked valid
// (0xFFFFFFFF).
func (r RootBlock) BitmapValid() (bool, error) {
	v, err := r.Uint32(offsetBitmapValid)
	if err != nil {
		return false, err
	}
	return v == bitmapValidMagic, nil
}

// SetBitmapValid sets or clears the root's bitmap-valid flag.
func (r RootBlock) SetBitmapValid(valid bool) error {
	var v uint32
	if valid {
		v = bitmapValidMagic
	}
	return r.SetUint32(offsetBitmapValid, v)
}

// BitmapPage reads bitmap-page table slot i (0..24).
func (r RootBlock) BitmapPage(i int) (uint32, error) {
	if i < 0 || i >= bitmapPageCount {
		return 0, &InvalidDataBlockIndexError{Index: i}
	}
	return r.Uint32(offsetBitmapPages + i*4)
}

// SetBitmapPage writes bitmap-page table slot i (0..24).
func (r RootBlock) SetBitmapPage(i int, v uint32) error {
	if i < 0 || i >= bitmapPageCount {
		return &InvalidDataBlockIndexError{Index: i}
	}
	return r.SetUint32(offsetBitmapPages+i*4, v)
}

// DiskAlterationDate reads the root-only disk-alteration timestamp.
func (r RootBlock) DiskAlterationDate() (DateTriplet, error) {
	return r.DateTriplet(offsetDiskAlteration)
}

// SetDiskAlterationDate writes the root-only disk-alteration timestamp.
func (r RootBlock) SetDiskAlterationDate(t DateTriplet) error {
	return r.SetDateTriplet(offsetDiskAlteration, t)
}

// CreationDate reads the root-only volume creation timestamp.
func (r RootBlock) CreationDate() (DateTriplet, error) {
	return r.DateTriplet(offsetCreationDate)
}

// SetCreationDate writes the root-only volume creation timestamp.
func (r RootBlock) SetCreationDate(t DateTriplet) error {
	return r.SetDateTriplet(offsetCreationDate, t)
}

// CheckName validates a volume or entry name: 1 to 30 bytes, none of them
// a colon, a slash, or a control byte below 0x20.
func CheckName(name string) error {
	if len(name) == 0 || len(name) > maxNameLength {
		return ErrInvalidName
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == ':' || c == '/' || c < 0x20 {
			return ErrInvalidName
		}
	}
	return nil
}
