package amiga

import "strings"

// EntryType classifies a directory entry by the secondary type of its
// header block.
type EntryType int

const (
	// EntryFile is a regular file.
	EntryFile EntryType = iota
	// EntryDir is a directory (including the root and hard-linked
	// directories).
	EntryDir
	// EntryLink is a soft link or hard link to a file.
	EntryLink
)

func entryTypeFor(secondary int32) EntryType {
	switch secondary {
	case SecondaryTypeRoot, SecondaryTypeDirectory, SecondaryTypeHardLinkDir:
		return EntryDir
	case SecondaryTypeSoftLink, SecondaryTypeHardLinkFile:
		return EntryLink
	default:
		return EntryFile
	}
}

// Metadata is the public per-entry metadata returned by Filesystem.Metadata
// and enumerated by Filesystem.ReadDir.
type Metadata struct {
	Addr      uint32
	Type      EntryType
	Size      uint64
	Altered   DateTriplet
	Name      string
}

// DirIterator is a non-restartable, lazily-advancing sequence of a
// directory's entries, produced in hash-slot-then-chain order (not
// alphabetical).
type DirIterator struct {
	fs      *Filesystem
	slot    int
	current uint32
	done    bool
}

// readDir returns a fresh iterator over a directory's children.
func readDir(fs *Filesystem, dirAddr uint32) (*DirIterator, error) {
	dir := NewHeaderBlock(fs.img, dirAddr)
	secondary, err := dir.SecondaryType()
	if err != nil {
		return nil, err
	}
	if entryTypeFor(secondary) != EntryDir {
		return nil, ErrNotADirectory
	}
	it := &DirIterator{fs: fs, slot: -1}
	it.advanceSlot(dirAddr)
	return it, nil
}

func (it *DirIterator) advanceSlot(dirAddr uint32) {
	dir := NewHeaderBlock(it.fs.img, dirAddr)
	for {
		it.slot++
		if it.slot >= TableSize {
			it.done = true
			return
		}
		head, err := dir.TableEntry(it.slot)
		if err != nil || head == 0 {
			continue
		}
		it.current = head
		return
	}
}

// Next returns the next entry, or ok=false once the sequence is exhausted.
func (it *DirIterator) Next(dirAddr uint32) (Metadata, bool, error) {
	if it.done {
		return Metadata{}, false, nil
	}

	entry := NewHeaderBlock(it.fs.img, it.current)
	md, err := metadataFromHeader(entry)
	if err != nil {
		return Metadata{}, false, err
	}

	next, err := entry.HashChainNext()
	if err != nil {
		return Metadata{}, false, err
	}
	if next != 0 {
		it.current = next
	} else {
		it.advanceSlot(dirAddr)
	}

	return md, true, nil
}

// ReadDirAll drains a DirIterator into a slice, in iteration order.
func ReadDirAll(fs *Filesystem, dirAddr uint32) ([]Metadata, error) {
	it, err := readDir(fs, dirAddr)
	if err != nil {
		return nil, err
	}
	var entries []Metadata
	for {
		md, ok, err := it.Next(dirAddr)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		entries = append(entries, md)
	}
	return entries, nil
}

func metadataFromHeader(h HeaderBlock) (Metadata, error) {
	secondary, err := h.SecondaryType()
	if err != nil {
		return Metadata{}, err
	}
	name, err := h.EntryName()
	if err != nil {
		return Metadata{}, err
	}
	altered, err := h.AlterationDate()
	if err != nil {
		return Metadata{}, err
	}

	md := Metadata{
		Addr:    h.Addr,
		Type:    entryTypeFor(secondary),
		Altered: altered,
		Name:    name,
	}

	if md.Type == EntryFile {
		sz, err := fileSizeOf(h)
		if err != nil {
			return Metadata{}, err
		}
		md.Size = uint64(sz)
	}

	return md, nil
}

// addEntry inserts child (already initialized, name set) into parent's hash
// table. The caller must not have already added an entry with the same
// (case-folded) name.
func addEntry(fs *Filesystem, parentAddr uint32, name string, childAddr uint32) error {
	parent := NewHeaderBlock(fs.img, parentAddr)

	if err := assertNameFree(fs, parentAddr, name); err != nil {
		return err
	}

	index := HashName(name, fs.international)
	head, err := parent.TableEntry(int(index))
	if err != nil {
		return err
	}

	now := Now()
	if err := parent.SetAlterationDate(now); err != nil {
		return err
	}
	if err := parent.SetTableEntry(int(index), childAddr); err != nil {
		return err
	}
	if err := parent.WriteChecksum(); err != nil {
		return err
	}

	child := NewHeaderBlock(fs.img, childAddr)
	if err := child.SetHashChainNext(head); err != nil {
		return err
	}
	if err := child.SetParent(parentAddr); err != nil {
		return err
	}
	return child.WriteChecksum()
}

// assertNameFree fails with ErrAlreadyExists if an entry with exactly this
// name already exists in parentAddr. Names are compared byte for byte, so an
// entry whose name differs only in letter case is not detected.
func assertNameFree(fs *Filesystem, parentAddr uint32, name string) error {
	_, err := lookupChild(fs, parentAddr, name)
	if err == nil {
		return ErrAlreadyExists
	}
	if err == ErrNotFound {
		return nil
	}
	return err
}

// removeEntry unlinks the header block named name from parentAddr's hash
// chain. The caller is responsible for freeing the child's blocks.
func removeEntry(fs *Filesystem, parentAddr uint32, name string) (uint32, error) {
	parent := NewHeaderBlock(fs.img, parentAddr)
	index := HashName(name, fs.international)

	head, err := parent.TableEntry(int(index))
	if err != nil {
		return 0, err
	}

	var prev uint32
	addr := head
	steps := 0
	for addr != 0 {
		if steps >= maxHashChainSteps {
			return 0, ErrCorruptedImageFile
		}
		steps++

		entry := NewHeaderBlock(fs.img, addr)
		entryName, err := entry.EntryName()
		if err != nil {
			return 0, err
		}
		if entryName == name {
			next, err := entry.HashChainNext()
			if err != nil {
				return 0, err
			}
			if prev == 0 {
				if err := parent.SetTableEntry(int(index), next); err != nil {
					return 0, err
				}
			} else {
				predecessor := NewHeaderBlock(fs.img, prev)
				if err := predecessor.SetHashChainNext(next); err != nil {
					return 0, err
				}
				if err := predecessor.WriteChecksum(); err != nil {
					return 0, err
				}
			}

			if err := parent.SetAlterationDate(Now()); err != nil {
				return 0, err
			}
			if err := parent.WriteChecksum(); err != nil {
				return 0, err
			}
			return addr, nil
		}

		prev = addr
		addr, err = entry.HashChainNext()
		if err != nil {
			return 0, err
		}
	}

	return 0, ErrNotFound
}

// createDir reserves and initializes a new directory header block under
// parentAddr.
func createDir(fs *Filesystem, parentAddr uint32, name string) (uint32, error) {
	if err := CheckName(name); err != nil {
		return 0, err
	}

	addr, err := ReserveFree(fs.img, fs.bitmapAddrs)
	if err != nil {
		return 0, err
	}

	dir := NewHeaderBlock(fs.img, addr)
	if err := dir.Zero(); err != nil {
		return 0, err
	}
	if err := dir.SetPrimaryType(PrimaryTypeHeader); err != nil {
		return 0, err
	}
	if err := dir.SetSecondaryType(SecondaryTypeDirectory); err != nil {
		return 0, err
	}
	if err := dir.SetHeaderKey(addr); err != nil {
		return 0, err
	}
	if err := dir.SetEntryName(name); err != nil {
		return 0, err
	}
	if err := dir.SetAlterationDate(Now()); err != nil {
		return 0, err
	}
	if err := dir.WriteChecksum(); err != nil {
		return 0, err
	}

	if err := addEntry(fs, parentAddr, name, addr); err != nil {
		return 0, err
	}

	return addr, nil
}

// createDirAll walks path's components from the volume root, creating any
// directory that does not already exist. A component that exists but is
// not a directory fails with ErrNotADirectory.
func createDirAll(fs *Filesystem, path string) error {
	segments := SplitPath(path)
	addr := fs.rootAddr

	for _, segment := range segments {
		child, err := lookupChild(fs, addr, segment)
		switch err {
		case nil:
			hdr := NewHeaderBlock(fs.img, child)
			secondary, serr := hdr.SecondaryType()
			if serr != nil {
				return serr
			}
			if entryTypeFor(secondary) != EntryDir {
				return ErrNotADirectory
			}
			addr = child
		case ErrNotFound:
			newAddr, cerr := createDir(fs, addr, segment)
			if cerr != nil {
				return cerr
			}
			addr = newAddr
		default:
			return err
		}
	}
	return nil
}

// removeDir unlinks and frees the empty directory at path. Fails if the
// directory's hash table has any non-null slot.
func removeDir(fs *Filesystem, path string) error {
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
	secondary, err := hdr.SecondaryType()
	if err != nil {
		return err
	}
	if entryTypeFor(secondary) != EntryDir {
		return ErrNotADirectory
	}

	for i := 0; i < TableSize; i++ {
		v, err := hdr.TableEntry(i)
		if err != nil {
			return err
		}
		if v != 0 {
			return ErrNotADirectory
		}
	}

	if _, err := removeEntry(fs, parentAddr, name); err != nil {
		return err
	}
	return Free(fs.img, fs.bitmapAddrs, addr)
}
