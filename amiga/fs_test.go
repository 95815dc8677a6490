package amiga

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formatDD(t *testing.T, flavor Flavor) *Filesystem {
	t.Helper()
	img := EmptyImage(DD)
	fs, err := Format(img, "TEST", FormatOptions{Flavor: flavor})
	require.NoError(t, err)
	return fs
}

// S1 — Fresh DD image.
func TestFreshDDImage(t *testing.T) {
	fs := formatDD(t, OFS)

	info, err := fs.Info()
	require.NoError(t, err)
	assert.Equal(t, "TEST", info.VolumeName)
	assert.EqualValues(t, DDBlockCount, info.TotalBlockCount)
	assert.EqualValues(t, DDBlockCount-1-1-2, info.FreeBlockCount)

	entries, err := fs.ReadDirAll("/")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// S2 — OFS write crossing one data block boundary exactly.
func TestOFSWriteOneDataBlock(t *testing.T) {
	fs := formatDD(t, OFS)
	data := bytes.Repeat([]byte{42}, 488)

	require.NoError(t, fs.Write("/data", data))

	got, err := fs.Read("/data")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	md, err := fs.Metadata("/data")
	require.NoError(t, err)
	assert.EqualValues(t, 488, md.Size)

	blocks, err := loadDataBlockList(fs, md.Addr)
	require.NoError(t, err)
	assert.Len(t, blocks, 1)
}

// S3 — OFS write requiring a second data block.
func TestOFSWriteTwoDataBlocks(t *testing.T) {
	fs := formatDD(t, OFS)
	data := bytes.Repeat([]byte{42}, 489)

	require.NoError(t, fs.Write("/data", data))

	got, err := fs.Read("/data")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	md, err := fs.Metadata("/data")
	require.NoError(t, err)
	blocks, err := loadDataBlockList(fs, md.Addr)
	require.NoError(t, err)
	assert.Len(t, blocks, 2)
}

// S4 — OFS write requiring 32 data blocks, still within header capacity.
func TestOFSWriteWithinHeaderCapacity(t *testing.T) {
	fs := formatDD(t, OFS)
	data := bytes.Repeat([]byte{42}, 15129)

	require.NoError(t, fs.Write("/data", data))
	got, err := fs.Read("/data")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	md, err := fs.Metadata("/data")
	require.NoError(t, err)
	blocks, err := loadDataBlockList(fs, md.Addr)
	require.NoError(t, err)
	assert.Len(t, blocks, 32)
}

// S5 — OFS write requiring a new extension (list) block, then shrink back.
func TestOFSWriteRequiresExtensionBlock(t *testing.T) {
	fs := formatDD(t, OFS)
	// Create the file first: its header block stays allocated after SetLen(0).
	require.NoError(t, fs.Write("/data", nil))

	before, err := FreeCount(fs.img, fs.bitmapAddrs)
	require.NoError(t, err)

	data := bytes.Repeat([]byte{42}, 35137)
	require.NoError(t, fs.Write("/data", data))

	got, err := fs.Read("/data")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	md, err := fs.Metadata("/data")
	require.NoError(t, err)
	blocks, err := loadDataBlockList(fs, md.Addr)
	require.NoError(t, err)
	assert.Len(t, blocks, 73)

	f, err := fs.Open("/data", ModeWrite)
	require.NoError(t, err)
	require.NoError(t, f.SetLen(0))

	after, err := FreeCount(fs.img, fs.bitmapAddrs)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// S6 — directory create/enumerate/remove.
func TestDirectoryCreateEnumerateRemove(t *testing.T) {
	fs := formatDD(t, OFS)

	before, err := FreeCount(fs.img, fs.bitmapAddrs)
	require.NoError(t, err)

	require.NoError(t, fs.CreateDirAll("/a/b/c"))

	root, err := fs.ReadDirAll("/")
	require.NoError(t, err)
	require.Len(t, root, 1)
	assert.Equal(t, "a", root[0].Name)

	a, err := fs.ReadDirAll("/a")
	require.NoError(t, err)
	require.Len(t, a, 1)
	assert.Equal(t, "b", a[0].Name)

	b, err := fs.ReadDirAll("/a/b")
	require.NoError(t, err)
	require.Len(t, b, 1)
	assert.Equal(t, "c", b[0].Name)

	require.NoError(t, fs.RemoveDir("/a/b/c"))
	require.NoError(t, fs.RemoveDir("/a/b"))
	require.NoError(t, fs.RemoveDir("/a"))

	after, err := FreeCount(fs.img, fs.bitmapAddrs)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFormatDumpLoadRoundTrip(t *testing.T) {
	img := EmptyImage(DD)
	fs, err := Format(img, "ROUND", FormatOptions{Flavor: FFS, International: true})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = fs.Dump(&buf)
	require.NoError(t, err)

	loadedImg, err := ImageFromBytes(buf.Bytes())
	require.NoError(t, err)
	loaded, err := Mount(loadedImg)
	require.NoError(t, err)

	wantInfo, err := fs.Info()
	require.NoError(t, err)
	gotInfo, err := loaded.Info()
	require.NoError(t, err)
	assert.Equal(t, wantInfo.VolumeName, gotInfo.VolumeName)
	assert.Equal(t, wantInfo.Flavor, gotInfo.Flavor)
	assert.Equal(t, wantInfo.International, gotInfo.International)
	assert.Equal(t, wantInfo.TotalBlockCount, gotInfo.TotalBlockCount)
	assert.Equal(t, wantInfo.FreeBlockCount, gotInfo.FreeBlockCount)
}

// TestDirectoryListingSurvivesDumpReload checks that a directory's full
// listing is identical after the image is dumped to a fresh
// buffer and re-mounted, using a structural diff rather than field-by-field
// assertions.
func TestDirectoryListingSurvivesDumpReload(t *testing.T) {
	fs := formatDD(t, OFS)
	require.NoError(t, fs.CreateDirAll("/a/b"))
	require.NoError(t, fs.Write("/a/one", []byte("hello")))
	require.NoError(t, fs.Write("/a/b/two", bytes.Repeat([]byte{1}, 600)))

	want, err := fs.ReadDirAll("/a")
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = fs.Dump(&buf)
	require.NoError(t, err)

	loadedImg, err := ImageFromBytes(buf.Bytes())
	require.NoError(t, err)
	loaded, err := Mount(loadedImg)
	require.NoError(t, err)

	got, err := loaded.ReadDirAll("/a")
	require.NoError(t, err)

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("directory listing mismatch after dump/reload (-want +got):\n%s", diff)
	}
}

func TestFFSRoundTrip(t *testing.T) {
	fs := formatDD(t, FFS)
	data := bytes.Repeat([]byte{7, 8, 9}, 1000)

	require.NoError(t, fs.Write("/x", data))
	got, err := fs.Read("/x")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestTruncateIdempotence(t *testing.T) {
	fs := formatDD(t, OFS)
	require.NoError(t, fs.Write("/data", bytes.Repeat([]byte{1}, 2000)))

	f, err := fs.Open("/data", ModeWrite)
	require.NoError(t, err)
	require.NoError(t, f.SetLen(500))

	before, err := FreeCount(fs.img, fs.bitmapAddrs)
	require.NoError(t, err)
	require.NoError(t, f.SetLen(500))
	after, err := FreeCount(fs.img, fs.bitmapAddrs)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestShrinkThenGrowRestoresBitmap(t *testing.T) {
	fs := formatDD(t, OFS)
	oldSize := 6000
	require.NoError(t, fs.Write("/data", bytes.Repeat([]byte{3}, oldSize)))

	before, err := FreeCount(fs.img, fs.bitmapAddrs)
	require.NoError(t, err)

	f, err := fs.Open("/data", ModeWrite)
	require.NoError(t, err)
	require.NoError(t, f.SetLen(100))
	require.NoError(t, f.SetLen(uint64(oldSize)))

	after, err := FreeCount(fs.img, fs.bitmapAddrs)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRemoveFileRestoresBitmap(t *testing.T) {
	fs := formatDD(t, OFS)
	before, err := FreeCount(fs.img, fs.bitmapAddrs)
	require.NoError(t, err)

	require.NoError(t, fs.Write("/data", bytes.Repeat([]byte{9}, 10000)))
	require.NoError(t, fs.RemoveFile("/data"))

	after, err := FreeCount(fs.img, fs.bitmapAddrs)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestMetadataNotFound(t *testing.T) {
	fs := formatDD(t, OFS)
	_, err := fs.Metadata("/nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateDirAllExistingNonDirectory(t *testing.T) {
	fs := formatDD(t, OFS)
	require.NoError(t, fs.Write("/a", []byte("x")))
	err := fs.CreateDirAll("/a/b")
	assert.ErrorIs(t, err, ErrNotADirectory)
}

func TestRemoveDirNonEmpty(t *testing.T) {
	fs := formatDD(t, OFS)
	require.NoError(t, fs.CreateDir("/a"))
	require.NoError(t, fs.CreateDir("/a/b"))
	err := fs.RemoveDir("/a")
	assert.ErrorIs(t, err, ErrNotADirectory)
}

func TestOpenCreateNewAlreadyExists(t *testing.T) {
	fs := formatDD(t, OFS)
	require.NoError(t, fs.Write("/a", []byte("x")))
	_, err := fs.Open("/a", ModeWrite|ModeCreateNew)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}
