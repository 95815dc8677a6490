package amiga

// offsetFileSize is the byte offset of a file header's logical size field
// (ADFlib's "byte_size"). It sits in the span the spec's common field map
// leaves unassigned for non-root blocks (between the address table and the
// alteration-date tail), the same relative position ADFlib uses.
const offsetFileSize = 324

// OpenMode is a bitmask of the access modes a file is opened with.
type OpenMode uint8

const (
	// ModeRead grants read access.
	ModeRead OpenMode = 1 << iota
	// ModeWrite grants write access.
	ModeWrite
	// ModeAppend seeks to the end of the file before every write.
	ModeAppend
	// ModeTruncate truncates an existing file to zero length on open.
	ModeTruncate
	// ModeCreate creates the file if it does not already exist.
	ModeCreate
	// ModeCreateNew creates the file, failing if it already exists.
	ModeCreateNew
)

// dataBlockDescriptor locates one entry in a file's data-block list: the
// data block's address, the extension block (header or list block) holding
// its table slot, and the slot index (0..71) within that extension block.
type dataBlockDescriptor struct {
	DataBlockAddr      uint32
	ExtensionBlockAddr uint32
	ExtensionSlotIndex int
}

// File is an open handle onto a file's header block and data-block list.
type File struct {
	fs         *Filesystem
	headerAddr uint32
	flavor     Flavor
	geometry   DataBlockGeometry

	size   uint64
	pos    uint64
	mode   OpenMode
	blocks []dataBlockDescriptor
}

func fileSizeOf(h HeaderBlock) (uint32, error) {
	return h.Uint32(offsetFileSize)
}

func setFileSizeOf(h HeaderBlock, size uint32) error {
	return h.SetUint32(offsetFileSize, size)
}

// loadDataBlockList walks a file header's table, then every chained
// extension (list) block, collecting descriptors for all filled slots.
func loadDataBlockList(fs *Filesystem, headerAddr uint32) ([]dataBlockDescriptor, error) {
	var blocks []dataBlockDescriptor

	extAddr := headerAddr
	steps := 0
	for extAddr != 0 {
		if steps > 4096 {
			return nil, ErrCorruptedImageFile
		}
		steps++

		ext := NewHeaderBlock(fs.img, extAddr)
		highSeq, err := ext.HighSeq()
		if err != nil {
			return nil, err
		}
		for slot := 0; slot < int(highSeq) && slot < TableSize; slot++ {
			addr, err := ext.TableEntry(slot)
			if err != nil {
				return nil, err
			}
			if addr == 0 {
				break
			}
			blocks = append(blocks, dataBlockDescriptor{
				DataBlockAddr:      addr,
				ExtensionBlockAddr: extAddr,
				ExtensionSlotIndex: slot,
			})
		}

		if int(highSeq) < TableSize {
			break
		}
		extAddr, err = ext.ExtensionPointer()
		if err != nil {
			return nil, err
		}
	}

	return blocks, nil
}

// TryOpen resolves path and opens it for reading/writing per mode.
// Position starts at 0, or at the end of the file when ModeAppend is set.
func TryOpen(fs *Filesystem, path string, mode OpenMode) (*File, error) {
	addr, err := ResolvePath(fs, path)
	if err != nil {
		return nil, err
	}
	hdr := NewHeaderBlock(fs.img, addr)
	if err := hdr.ExpectSecondaryType(SecondaryTypeFile); err != nil {
		return nil, ErrNotAFile
	}

	size, err := fileSizeOf(hdr)
	if err != nil {
		return nil, err
	}
	blocks, err := loadDataBlockList(fs, addr)
	if err != nil {
		return nil, err
	}

	f := &File{
		fs:         fs,
		headerAddr: addr,
		flavor:     fs.flavor,
		geometry:   GeometryFor(fs.flavor),
		size:       uint64(size),
		mode:       mode,
		blocks:     blocks,
	}

	if mode&ModeTruncate != 0 {
		if err := f.SetLen(0); err != nil {
			return nil, err
		}
	}
	if mode&ModeAppend != 0 {
		f.pos = f.size
	}

	return f, nil
}

// TryCreate creates path, or, if it already exists, opens it per mode and
// truncates it to zero length. createNew requires path not already exist.
func TryCreate(fs *Filesystem, path string, mode OpenMode, createNew bool) (*File, error) {
	exists := fs.Exists(path)
	if exists {
		if createNew {
			return nil, ErrAlreadyExists
		}
		f, err := TryOpen(fs, path, mode)
		if err != nil {
			return nil, err
		}
		if err := f.SetLen(0); err != nil {
			return nil, err
		}
		return f, nil
	}

	segments := SplitPath(path)
	if len(segments) == 0 {
		return nil, ErrInvalidPath
	}
	name := segments[len(segments)-1]
	if err := CheckName(name); err != nil {
		return nil, err
	}

	var parentPath string
	if len(segments) > 1 {
		parentPath = "/" + joinSegments(segments[:len(segments)-1])
	}
	parentAddr, err := ResolvePath(fs, parentPath)
	if err != nil {
		return nil, err
	}

	addr, err := ReserveFree(fs.img, fs.bitmapAddrs)
	if err != nil {
		return nil, err
	}

	hdr := NewHeaderBlock(fs.img, addr)
	if err := hdr.Zero(); err != nil {
		return nil, err
	}
	if err := hdr.SetPrimaryType(PrimaryTypeHeader); err != nil {
		return nil, err
	}
	if err := hdr.SetSecondaryType(SecondaryTypeFile); err != nil {
		return nil, err
	}
	if err := hdr.SetHeaderKey(addr); err != nil {
		return nil, err
	}
	if err := hdr.SetEntryName(name); err != nil {
		return nil, err
	}
	if err := hdr.SetAlterationDate(Now()); err != nil {
		return nil, err
	}
	if err := hdr.WriteChecksum(); err != nil {
		return nil, err
	}

	if err := addEntry(fs, parentAddr, name, addr); err != nil {
		return nil, err
	}

	return &File{
		fs:         fs,
		headerAddr: addr,
		flavor:     fs.flavor,
		geometry:   GeometryFor(fs.flavor),
		mode:       mode,
	}, nil
}

func joinSegments(segments []string) string {
	out := ""
	for i, s := range segments {
		if i > 0 {
			out += "/"
		}
		out += s
	}
	return out
}

// Size returns the file's current logical length in bytes.
func (f *File) Size() uint64 { return f.size }

// Read copies up to len(buf) bytes starting at the current position,
// advancing it. It returns the number of bytes read and io-style EOF
// semantics: reading at EOF returns (0, ErrFileEOF).
func (f *File) Read(buf []byte) (int, error) {
	if f.mode&ModeRead == 0 {
		return 0, ErrBadFileDescriptor
	}
	if f.pos >= f.size {
		return 0, ErrFileEOF
	}

	read := 0
	for read < len(buf) && f.pos < f.size {
		dataPos := int(f.pos) % f.geometry.DataSize
		remaining := len(buf) - read
		chunk := remaining
		if c := int(f.size-f.pos); c < chunk {
			chunk = c
		}
		if c := f.geometry.DataSize - dataPos; c < chunk {
			chunk = c
		}

		index := int(f.pos) / f.geometry.DataSize
		if index >= len(f.blocks) {
			return read, &InvalidDataBlockIndexError{Index: index}
		}
		desc := f.blocks[index]

		var payload []byte
		var err error
		if f.flavor == OFS {
			payload, err = NewOFSDataBlock(f.fs.img, desc.DataBlockAddr).ReadPayloadAt(dataPos, chunk)
		} else {
			payload, err = NewFFSDataBlock(f.fs.img, desc.DataBlockAddr).ReadAt(dataPos, chunk)
		}
		if err != nil {
			return read, err
		}

		copy(buf[read:read+chunk], payload)
		read += chunk
		f.pos += uint64(chunk)
	}

	return read, nil
}

// Write copies data into the file starting at the current position,
// allocating new data blocks as needed, and advances the position. It
// updates the logical size and resyncs the header before returning.
func (f *File) Write(data []byte) (int, error) {
	if f.mode&ModeWrite == 0 {
		return 0, ErrBadFileDescriptor
	}
	if f.mode&ModeAppend != 0 {
		f.pos = f.size
	}

	written := 0
	for written < len(data) {
		dataPos := int(f.pos) % f.geometry.DataSize
		remaining := len(data) - written
		chunk := remaining
		if c := f.geometry.DataSize - dataPos; c < chunk {
			chunk = c
		}

		index := int(f.pos) / f.geometry.DataSize
		var desc dataBlockDescriptor
		if index < len(f.blocks) {
			desc = f.blocks[index]
		} else {
			var err error
			desc, err = f.pushDataBlockListEntry()
			if err != nil {
				return written, err
			}
		}

		if f.flavor == OFS {
			blk := NewOFSDataBlock(f.fs.img, desc.DataBlockAddr)
			if err := blk.WritePayloadAt(dataPos, data[written:written+chunk]); err != nil {
				return written, err
			}
			existing, err := blk.DataSize()
			if err != nil {
				return written, err
			}
			newSize := uint32(dataPos + chunk)
			if existing > newSize {
				newSize = existing
			}
			if err := blk.SetDataSize(newSize); err != nil {
				return written, err
			}
			if err := blk.WriteChecksum(); err != nil {
				return written, err
			}
		} else {
			blk := NewFFSDataBlock(f.fs.img, desc.DataBlockAddr)
			if err := blk.WriteAt(dataPos, data[written:written+chunk]); err != nil {
				return written, err
			}
		}

		written += chunk
		f.pos += uint64(chunk)
		if f.pos > f.size {
			f.size = f.pos
		}
	}

	if err := f.sync(); err != nil {
		return written, err
	}
	return written, nil
}

// Seek repositions the file's cursor. whence 0=start, 1=current, 2=end.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case 0:
		base = 0
	case 1:
		base = int64(f.pos)
	case 2:
		base = int64(f.size)
	}
	newPos := base + offset
	if newPos < 0 {
		newPos = 0
	}
	f.pos = uint64(newPos)
	return int64(f.pos), nil
}

// sync rewrites the header's file-size field, alteration date, and
// checksum.
func (f *File) sync() error {
	hdr := NewHeaderBlock(f.fs.img, f.headerAddr)
	if err := setFileSizeOf(hdr, uint32(f.size)); err != nil {
		return err
	}
	if err := hdr.SetAlterationDate(Now()); err != nil {
		return err
	}
	return hdr.WriteChecksum()
}

// pushDataBlockListEntry allocates a new data block and appends its
// descriptor to the file's data-block list, extending the table chain with
// a new list block when the current extension block's 72 slots are full.
func (f *File) pushDataBlockListEntry() (dataBlockDescriptor, error) {
	var extAddr uint32
	var slot int

	if len(f.blocks) == 0 {
		extAddr = f.headerAddr
		slot = 0
	} else {
		last := f.blocks[len(f.blocks)-1]
		if last.ExtensionSlotIndex < TableSize-1 {
			extAddr = last.ExtensionBlockAddr
			slot = last.ExtensionSlotIndex + 1
		} else {
			newExt, err := ReserveFree(f.fs.img, f.fs.bitmapAddrs)
			if err != nil {
				return dataBlockDescriptor{}, err
			}
			ext := NewHeaderBlock(f.fs.img, newExt)
			if err := ext.Zero(); err != nil {
				return dataBlockDescriptor{}, err
			}
			if err := ext.SetPrimaryType(PrimaryTypeList); err != nil {
				return dataBlockDescriptor{}, err
			}
			if err := ext.SetSecondaryType(SecondaryTypeFile); err != nil {
				return dataBlockDescriptor{}, err
			}
			if err := ext.SetHeaderKey(newExt); err != nil {
				return dataBlockDescriptor{}, err
			}
			if err := ext.SetParent(f.headerAddr); err != nil {
				return dataBlockDescriptor{}, err
			}
			if err := ext.WriteChecksum(); err != nil {
				return dataBlockDescriptor{}, err
			}

			prevExt := NewHeaderBlock(f.fs.img, last.ExtensionBlockAddr)
			if err := prevExt.SetExtensionPointer(newExt); err != nil {
				return dataBlockDescriptor{}, err
			}
			if err := prevExt.WriteChecksum(); err != nil {
				return dataBlockDescriptor{}, err
			}

			extAddr = newExt
			slot = 0
		}
	}

	dataAddr, err := ReserveFree(f.fs.img, f.fs.bitmapAddrs)
	if err != nil {
		return dataBlockDescriptor{}, err
	}

	if f.flavor == OFS {
		blk := NewOFSDataBlock(f.fs.img, dataAddr)
		if err := blk.Init(f.headerAddr, uint32(len(f.blocks)+1)); err != nil {
			return dataBlockDescriptor{}, err
		}
		if err := blk.WriteChecksum(); err != nil {
			return dataBlockDescriptor{}, err
		}
	}

	ext := NewHeaderBlock(f.fs.img, extAddr)
	if err := ext.SetTableEntry(slot, dataAddr); err != nil {
		return dataBlockDescriptor{}, err
	}
	if err := ext.SetHighSeq(uint32(slot + 1)); err != nil {
		return dataBlockDescriptor{}, err
	}
	if err := ext.WriteChecksum(); err != nil {
		return dataBlockDescriptor{}, err
	}

	if f.flavor == OFS {
		if len(f.blocks) == 0 {
			hdr := NewHeaderBlock(f.fs.img, f.headerAddr)
			if err := hdr.SetFirstData(dataAddr); err != nil {
				return dataBlockDescriptor{}, err
			}
			if err := hdr.WriteChecksum(); err != nil {
				return dataBlockDescriptor{}, err
			}
		} else {
			prevDesc := f.blocks[len(f.blocks)-1]
			prevData := NewOFSDataBlock(f.fs.img, prevDesc.DataBlockAddr)
			if err := prevData.SetNextData(dataAddr); err != nil {
				return dataBlockDescriptor{}, err
			}
			if err := prevData.WriteChecksum(); err != nil {
				return dataBlockDescriptor{}, err
			}
		}
	}

	desc := dataBlockDescriptor{DataBlockAddr: dataAddr, ExtensionBlockAddr: extAddr, ExtensionSlotIndex: slot}
	f.blocks = append(f.blocks, desc)
	return desc, nil
}

// popDataBlockListEntry frees the last descriptor's data block, clears its
// table slot, and frees a now-empty list block. It does not adjust size;
// callers (SetLen) do that.
func (f *File) popDataBlockListEntry() error {
	if len(f.blocks) == 0 {
		return nil
	}
	last := f.blocks[len(f.blocks)-1]

	if err := Free(f.fs.img, f.fs.bitmapAddrs, last.DataBlockAddr); err != nil {
		return err
	}

	ext := NewHeaderBlock(f.fs.img, last.ExtensionBlockAddr)
	if err := ext.SetTableEntry(last.ExtensionSlotIndex, 0); err != nil {
		return err
	}
	if err := ext.SetHighSeq(uint32(last.ExtensionSlotIndex)); err != nil {
		return err
	}
	if err := ext.WriteChecksum(); err != nil {
		return err
	}

	if last.ExtensionSlotIndex == 0 && last.ExtensionBlockAddr != f.headerAddr {
		if err := Free(f.fs.img, f.fs.bitmapAddrs, last.ExtensionBlockAddr); err != nil {
			return err
		}
		f.blocks = f.blocks[:len(f.blocks)-1]
		if len(f.blocks) > 0 {
			newLast := f.blocks[len(f.blocks)-1]
			prevExt := NewHeaderBlock(f.fs.img, newLast.ExtensionBlockAddr)
			if err := prevExt.SetExtensionPointer(0); err != nil {
				return err
			}
			if err := prevExt.WriteChecksum(); err != nil {
				return err
			}
		}
	} else {
		f.blocks = f.blocks[:len(f.blocks)-1]
	}

	if f.flavor == OFS {
		if len(f.blocks) == 0 {
			hdr := NewHeaderBlock(f.fs.img, f.headerAddr)
			if err := hdr.SetFirstData(0); err != nil {
				return err
			}
			if err := hdr.WriteChecksum(); err != nil {
				return err
			}
		} else {
			newLast := f.blocks[len(f.blocks)-1]
			newTail := NewOFSDataBlock(f.fs.img, newLast.DataBlockAddr)
			if err := newTail.SetNextData(0); err != nil {
				return err
			}
			if err := newTail.WriteChecksum(); err != nil {
				return err
			}
		}
	}

	return nil
}

// SetLen grows or shrinks the file to exactly newSize bytes, allocating or
// freeing data blocks as needed, zero-filling any newly grown region, and
// finally resyncing the header.
func (f *File) SetLen(newSize uint64) error {
	if f.mode&ModeWrite == 0 {
		return ErrBadFileDescriptor
	}

	if newSize > f.size {
		savedPos := f.pos
		f.pos = f.size
		zero := make([]byte, newSize-f.size)
		if _, err := f.Write(zero); err != nil {
			f.pos = savedPos
			return err
		}
		f.pos = savedPos
	} else if newSize < f.size {
		wantBlocks := 0
		if newSize > 0 {
			wantBlocks = int((newSize + uint64(f.geometry.DataSize) - 1) / uint64(f.geometry.DataSize))
		}
		for len(f.blocks) > wantBlocks {
			if err := f.popDataBlockListEntry(); err != nil {
				return err
			}
		}
		f.size = newSize
		if f.pos > f.size {
			f.pos = f.size
		}

		if f.flavor == OFS && newSize > 0 && len(f.blocks) > 0 {
			tailLen := newSize - uint64(len(f.blocks)-1)*uint64(f.geometry.DataSize)
			tail := f.blocks[len(f.blocks)-1]
			blk := NewOFSDataBlock(f.fs.img, tail.DataBlockAddr)
			if err := blk.SetDataSize(uint32(tailLen)); err != nil {
				return err
			}
			if err := blk.WriteChecksum(); err != nil {
				return err
			}
		}
	}

	return f.sync()
}
