package amiga

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumRoundTrip(t *testing.T) {
	img := EmptyImage(DD)
	blk := NewBlock(img, 10)

	require.NoError(t, blk.SetPrimaryType(PrimaryTypeHeader))
	require.NoError(t, blk.SetHeaderKey(10))
	require.NoError(t, blk.SetSecondaryType(SecondaryTypeDirectory))
	require.NoError(t, blk.WriteChecksum())

	ok, err := blk.VerifyChecksum()
	require.NoError(t, err)
	assert.True(t, ok)

	// Corrupting any other field must invalidate the checksum.
	require.NoError(t, blk.SetHeaderKey(11))
	ok, err = blk.VerifyChecksum()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTableEntryOrderingIsHighestIndexFirst(t *testing.T) {
	img := EmptyImage(DD)
	blk := NewBlock(img, 10)

	require.NoError(t, blk.SetTableEntry(0, 100))
	require.NoError(t, blk.SetTableEntry(71, 200))

	// Slot 0 physically sits at the last table position.
	raw, err := blk.Uint32(offsetTable + (TableSize-1)*4)
	require.NoError(t, err)
	assert.EqualValues(t, 100, raw)

	raw, err = blk.Uint32(offsetTable)
	require.NoError(t, err)
	assert.EqualValues(t, 200, raw)
}

func TestBlockOffsetBounds(t *testing.T) {
	img := EmptyImage(DD)
	blk := NewBlock(img, 0)

	_, err := blk.Byte(512)
	assert.Error(t, err)
	_, err = blk.Uint32(510)
	assert.Error(t, err)
}

func TestNameFieldRoundTrip(t *testing.T) {
	img := EmptyImage(DD)
	blk := NewBlock(img, 10)

	require.NoError(t, blk.SetName(offsetName, maxNameLength, "hello"))
	name, err := blk.Name(offsetName, maxNameLength)
	require.NoError(t, err)
	assert.Equal(t, "hello", name)
}

func TestBootBlockRoundTrip(t *testing.T) {
	img := EmptyImage(DD)
	require.NoError(t, WriteBootBlock(img, BootBlockInfo{Flavor: FFS, International: true, Cache: false}, 880))

	info, err := ReadBootBlock(img)
	require.NoError(t, err)
	assert.Equal(t, FFS, info.Flavor)
	assert.True(t, info.International)
	assert.False(t, info.Cache)
	assert.EqualValues(t, 880, info.RootBlockAddr)
}

func TestImageInvalidSize(t *testing.T) {
	_, err := ImageFromBytes(make([]byte, 123))
	assert.Error(t, err)
	var sizeErr *DiskInvalidSizeError
	assert.ErrorAs(t, err, &sizeErr)
}
