package amiga

import "strings"

// maxHashChainSteps caps hash-chain traversal to guard against a corrupted
// on-disk cycle; chains cannot legitimately exceed TableSize entries.
const maxHashChainSteps = TableSize

// upperByte uppercases an ASCII byte, additionally folding the Amiga
// international-mode upper range (0xE0..0xFE, excluding 0xF7) when intl is
// set.
func upperByte(c byte, intl bool) byte {
	if c >= 'a' && c <= 'z' {
		return c - 0x20
	}
	if intl && c >= 0xE0 && c <= 0xFE && c != 0xF7 {
		return c - 0x20
	}
	return c
}

// HashName computes the directory hash-table bucket (0..71) for name under
// the given international-mode setting.
func HashName(name string, intl bool) uint32 {
	h := uint32(len(name)) & 0x7FF
	for i := 0; i < len(name); i++ {
		h = (h*13 + uint32(upperByte(name[i], intl))) & 0x7FF
	}
	return h % TableSize
}

// SplitPath splits a '/'-separated path into non-empty segments. "/",
// "//foo", and "foo" all resolve sensibly; an empty path yields no
// segments.
func SplitPath(path string) []string {
	raw := strings.Split(path, "/")
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// ResolvePath walks path from the volume root, returning the header-block
// address of the final segment. An empty path resolves to the root block.
func ResolvePath(fs *Filesystem, path string) (uint32, error) {
	segments := SplitPath(path)
	addr := fs.rootAddr

	for _, segment := range segments {
		next, err := lookupChild(fs, addr, segment)
		if err != nil {
			return 0, err
		}
		addr = next
	}
	return addr, nil
}

// lookupChild resolves one path segment within the directory at dirAddr.
func lookupChild(fs *Filesystem, dirAddr uint32, segment string) (uint32, error) {
	dir := NewHeaderBlock(fs.img, dirAddr)
	secondary, err := dir.SecondaryType()
	if err != nil {
		return 0, err
	}
	switch secondary {
	case SecondaryTypeRoot, SecondaryTypeDirectory, SecondaryTypeHardLinkDir:
	default:
		return 0, ErrNotADirectory
	}

	index := HashName(segment, fs.international)
	head, err := dir.TableEntry(int(index))
	if err != nil {
		return 0, err
	}

	visited := make(map[uint32]bool)
	addr := head
	steps := 0
	for addr != 0 {
		if steps >= maxHashChainSteps || visited[addr] {
			return 0, ErrCorruptedImageFile
		}
		visited[addr] = true
		steps++

		entry := NewHeaderBlock(fs.img, addr)
		name, err := entry.EntryName()
		if err != nil {
			return 0, err
		}
		if name == segment {
			return addr, nil
		}
		addr, err = entry.HashChainNext()
		if err != nil {
			return 0, err
		}
	}

	return 0, ErrNotFound
}
