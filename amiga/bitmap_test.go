package amiga

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumBitmapBlocksDD(t *testing.T) {
	n := NumBitmapBlocks(DDBlockCount)
	assert.Equal(t, 1, n)
}

func TestNumBitmapBlocksHD(t *testing.T) {
	n := NumBitmapBlocks(HDBlockCount)
	assert.Equal(t, 1, n)
}

func TestReserveFreeRoundTrip(t *testing.T) {
	fs := formatDD(t, OFS)

	before, err := FreeCount(fs.img, fs.bitmapAddrs)
	require.NoError(t, err)

	addr, err := ReserveFree(fs.img, fs.bitmapAddrs)
	require.NoError(t, err)
	assert.NotZero(t, addr)

	mid, err := FreeCount(fs.img, fs.bitmapAddrs)
	require.NoError(t, err)
	assert.Equal(t, before-1, mid)

	require.NoError(t, Free(fs.img, fs.bitmapAddrs, addr))

	after, err := FreeCount(fs.img, fs.bitmapAddrs)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFreeInvalidAddress(t *testing.T) {
	fs := formatDD(t, OFS)
	err := Free(fs.img, fs.bitmapAddrs, fs.img.BlockCount()+100)
	assert.Error(t, err)
}

func TestReserveFreeExhaustion(t *testing.T) {
	img := EmptyImage(DD)
	root := NewRootBlock(img, 880)
	bitmapAddrs, err := InitBitmap(img, root, 880)
	require.NoError(t, err)

	for {
		_, err := ReserveFree(img, bitmapAddrs)
		if err != nil {
			assert.ErrorIs(t, err, ErrNoSpaceLeft)
			break
		}
	}
}

func TestBitmapAccuracyAfterFormat(t *testing.T) {
	fs := formatDD(t, OFS)
	free, err := FreeCount(fs.img, fs.bitmapAddrs)
	require.NoError(t, err)

	// Boot blocks (2) + root (1) + bitmap block(s) are reserved.
	reserved := 2 + 1 + len(fs.bitmapAddrs)
	assert.EqualValues(t, int(fs.img.BlockCount())-reserved, free)
}
