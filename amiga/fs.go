package amiga

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// FormatOptions configures Format.
type FormatOptions struct {
	Flavor        Flavor
	International bool
	Cache         bool
	// RootAddr overrides the root block address; zero selects the image's
	// midpoint block.
	RootAddr uint32
}

// Filesystem is a mounted handle onto an Image: the root block address,
// the volume's locale/flavor settings, and the cached bitmap-block address
// list.
type Filesystem struct {
	img           *Image
	rootAddr      uint32
	bitmapAddrs   []uint32
	flavor        Flavor
	international bool
	cache         bool
}

// Format writes a fresh boot block, root block, and bitmap onto img and
// returns a handle to it. name must pass CheckName.
func Format(img *Image, name string, opts FormatOptions) (*Filesystem, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}

	rootAddr := opts.RootAddr
	if rootAddr == 0 {
		rootAddr = img.BlockCount() / 2
	}

	if err := WriteBootBlock(img, BootBlockInfo{
		Flavor:        opts.Flavor,
		International: opts.International,
		Cache:         opts.Cache,
	}, rootAddr); err != nil {
		return nil, err
	}

	root := NewRootBlock(img, rootAddr)
	if err := root.Zero(); err != nil {
		return nil, err
	}
	if err := root.SetPrimaryType(PrimaryTypeHeader); err != nil {
		return nil, err
	}
	if err := root.SetSecondaryType(SecondaryTypeRoot); err != nil {
		return nil, err
	}
	if err := root.SetHeaderKey(rootAddr); err != nil {
		return nil, err
	}
	if err := root.SetHighSeq(0); err != nil {
		return nil, err
	}
	if err := root.SetEntryName(name); err != nil {
		return nil, err
	}

	now := Now()
	if err := root.SetAlterationDate(now); err != nil {
		return nil, err
	}
	if err := root.SetDiskAlterationDate(now); err != nil {
		return nil, err
	}
	if err := root.SetCreationDate(now); err != nil {
		return nil, err
	}
	if err := root.WriteChecksum(); err != nil {
		return nil, err
	}

	bitmapAddrs, err := InitBitmap(img, root, rootAddr)
	if err != nil {
		return nil, err
	}

	return &Filesystem{
		img:           img,
		rootAddr:      rootAddr,
		bitmapAddrs:   bitmapAddrs,
		flavor:        opts.Flavor,
		international: opts.International,
		cache:         opts.Cache,
	}, nil
}

// Mount validates img's boot block and root block and returns a handle to
// it, with the bitmap-block addresses cached from the root's bitmap-page
// table.
func Mount(img *Image) (*Filesystem, error) {
	boot, err := ReadBootBlock(img)
	if err != nil {
		return nil, err
	}

	root := NewRootBlock(img, boot.RootBlockAddr)
	if err := root.ExpectPrimaryType(PrimaryTypeHeader); err != nil {
		return nil, errors.Wrap(err, "invalid root block")
	}
	if err := root.ExpectSecondaryType(SecondaryTypeRoot); err != nil {
		return nil, errors.Wrap(err, "invalid root block")
	}
	ok, err := root.VerifyChecksum()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrap(ErrCorruptedImageFile, "root block checksum mismatch")
	}

	var bitmapAddrs []uint32
	for i := 0; i < bitmapPageCount; i++ {
		addr, err := root.BitmapPage(i)
		if err != nil {
			return nil, err
		}
		if addr == 0 {
			continue
		}
		bitmapAddrs = append(bitmapAddrs, addr)
	}

	return &Filesystem{
		img:           img,
		rootAddr:      boot.RootBlockAddr,
		bitmapAddrs:   bitmapAddrs,
		flavor:        boot.Flavor,
		international: boot.International,
		cache:         boot.Cache,
	}, nil
}

// Info is the volume-level summary returned by Filesystem.Info.
type Info struct {
	VolumeName      string
	Flavor          Flavor
	International   bool
	Cache           bool
	RootAlteration  DateTriplet
	DiskAlteration  DateTriplet
	Creation        DateTriplet
	TotalBlockCount uint32
	TotalSize       uint64
	FreeBlockCount  uint32
	FreeSize        uint64
}

// Info reports volume identity, flags, timestamps, and free/total space.
func (fs *Filesystem) Info() (Info, error) {
	root := NewRootBlock(fs.img, fs.rootAddr)

	name, err := root.EntryName()
	if err != nil {
		return Info{}, err
	}
	altered, err := root.AlterationDate()
	if err != nil {
		return Info{}, err
	}
	diskAltered, err := root.DiskAlterationDate()
	if err != nil {
		return Info{}, err
	}
	created, err := root.CreationDate()
	if err != nil {
		return Info{}, err
	}
	free, err := FreeCount(fs.img, fs.bitmapAddrs)
	if err != nil {
		return Info{}, err
	}

	total := fs.img.BlockCount()
	return Info{
		VolumeName:      name,
		Flavor:          fs.flavor,
		International:   fs.international,
		Cache:           fs.cache,
		RootAlteration:  altered,
		DiskAlteration:  diskAltered,
		Creation:        created,
		TotalBlockCount: total,
		TotalSize:       uint64(total) * BlockSize,
		FreeBlockCount:  free,
		FreeSize:        uint64(free) * BlockSize,
	}, nil
}

// Metadata resolves path and returns its entry metadata.
func (fs *Filesystem) Metadata(path string) (Metadata, error) {
	addr, err := ResolvePath(fs, path)
	if err != nil {
		return Metadata{}, err
	}
	return metadataFromHeader(NewHeaderBlock(fs.img, addr))
}

// Exists reports whether path resolves to an entry.
func (fs *Filesystem) Exists(path string) bool {
	_, err := ResolvePath(fs, path)
	return err == nil
}

// ReadDir returns an iterator over path's children. path must name a
// directory.
func (fs *Filesystem) ReadDir(path string) (*DirIterator, error) {
	addr, err := ResolvePath(fs, path)
	if err != nil {
		return nil, err
	}
	return readDir(fs, addr)
}

// ReadDirAll resolves path and drains its directory listing into a slice.
func (fs *Filesystem) ReadDirAll(path string) ([]Metadata, error) {
	addr, err := ResolvePath(fs, path)
	if err != nil {
		return nil, err
	}
	return ReadDirAll(fs, addr)
}

// Open opens path per mode (see OpenMode), creating it if ModeCreate or
// ModeCreateNew is set.
func (fs *Filesystem) Open(path string, mode OpenMode) (*File, error) {
	if mode&(ModeRead|ModeWrite) == 0 {
		return nil, ErrInvalidFileMode
	}
	if mode&(ModeCreate|ModeCreateNew) != 0 {
		return TryCreate(fs, path, mode, mode&ModeCreateNew != 0)
	}
	return TryOpen(fs, path, mode)
}

// Read is a convenience wrapper that opens path read-only and reads its
// entire contents.
func (fs *Filesystem) Read(path string) ([]byte, error) {
	f, err := fs.Open(path, ModeRead)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, f.Size())
	if len(buf) == 0 {
		return buf, nil
	}
	n, err := f.Read(buf)
	if err != nil && err != ErrFileEOF {
		return nil, err
	}
	return buf[:n], nil
}

// Write is a convenience wrapper that creates or truncates path and writes
// data to it in full.
func (fs *Filesystem) Write(path string, data []byte) error {
	f, err := fs.Open(path, ModeWrite|ModeCreate|ModeTruncate)
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	return err
}

// CreateDir creates a single directory at path; its parent must already
// exist.
func (fs *Filesystem) CreateDir(path string) error {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return ErrInvalidPath
	}
	var parentPath string
	if len(segments) > 1 {
		parentPath = "/" + joinSegments(segments[:len(segments)-1])
	}
	parentAddr, err := ResolvePath(fs, parentPath)
	if err != nil {
		return err
	}
	_, err = createDir(fs, parentAddr, segments[len(segments)-1])
	return err
}

// CreateDirAll creates path and any missing parent directories. An
// existing path component that is not a directory fails with
// ErrNotADirectory.
func (fs *Filesystem) CreateDirAll(path string) error {
	return createDirAll(fs, path)
}

// RemoveDir removes the empty directory at path.
func (fs *Filesystem) RemoveDir(path string) error {
	return removeDir(fs, path)
}

// RemoveFile removes the file at path and frees its data blocks.
func (fs *Filesystem) RemoveFile(path string) error {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return ErrInvalidPath
	}
	parentPath := strings.Join(segments[:len(segments)-1], "/")
	name := segments[len(segments)-1]

	parentAddr, err := ResolvePath(fs, parentPath)
	if err != nil {
		return err
	}
	addr, err := lookupChild(fs, parentAddr, name)
	if err != nil {
		return err
	}

	hdr := NewHeaderBlock(fs.img, addr)
	if err := hdr.ExpectSecondaryType(SecondaryTypeFile); err != nil {
		return ErrNotAFile
	}

	blocks, err := loadDataBlockList(fs, addr)
	if err != nil {
		return err
	}
	for _, desc := range blocks {
		if err := Free(fs.img, fs.bitmapAddrs, desc.DataBlockAddr); err != nil {
			return err
		}
	}
	for _, desc := range blocks {
		if desc.ExtensionSlotIndex == 0 && desc.ExtensionBlockAddr != addr {
			if err := Free(fs.img, fs.bitmapAddrs, desc.ExtensionBlockAddr); err != nil {
				return err
			}
		}
	}

	if _, err := removeEntry(fs, parentAddr, name); err != nil {
		return err
	}
	return Free(fs.img, fs.bitmapAddrs, addr)
}

// SetModified updates path's alteration date without touching its content.
func (fs *Filesystem) SetModified(path string, t time.Time) error {
	addr, err := ResolvePath(fs, path)
	if err != nil {
		return err
	}
	hdr := NewHeaderBlock(fs.img, addr)
	if err := hdr.SetAlterationDate(NewDateTriplet(t)); err != nil {
		return err
	}
	return hdr.WriteChecksum()
}

// Dump writes the whole image to w.
func (fs *Filesystem) Dump(w io.Writer) (int64, error) {
	n, err := w.Write(fs.img.Data())
	return int64(n), err
}

// DumpFile writes the whole image to a new host file at hostPath.
func (fs *Filesystem) DumpFile(hostPath string) error {
	f, err := os.Create(hostPath)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fs.Dump(f)
	return err
}
