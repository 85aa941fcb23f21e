package ram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Len(t *testing.T) {
	r := New(1024)
	assert.Equal(t, 1024, r.Len())
}

func TestReadWrite(t *testing.T) {
	r := New(16)

	require.NoError(t, r.Write(0, 0xAB))
	b, err := r.Read(0)
	require.NoError(t, err)
	assert.Equal(t, byte(0xAB), b)
}

func TestRead_DefaultsToZero(t *testing.T) {
	r := New(16)
	b, err := r.Read(5)
	require.NoError(t, err)
	assert.Equal(t, byte(0), b)
}

func TestRead_OutOfBounds(t *testing.T) {
	r := New(16)
	_, err := r.Read(16)
	require.Error(t, err)

	var rerr *RAMError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, InvalidAddress, rerr.Kind)
}

func TestRead_NegativeOffset(t *testing.T) {
	r := New(16)
	_, err := r.Read(-1)
	require.Error(t, err)

	var rerr *RAMError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, InvalidAddress, rerr.Kind)
}

func TestWrite_OutOfBounds(t *testing.T) {
	r := New(16)
	err := r.Write(16, 1)
	require.Error(t, err)

	var rerr *RAMError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, InvalidAddress, rerr.Kind)
}

func TestWriteSlice(t *testing.T) {
	r := New(16)
	require.NoError(t, r.WriteSlice(4, []byte{1, 2, 3, 4}))

	for i, want := range []byte{1, 2, 3, 4} {
		b, err := r.Read(4 + i)
		require.NoError(t, err)
		assert.Equal(t, want, b)
	}
}

func TestWriteSlice_LargerThanCapacity(t *testing.T) {
	r := New(4)
	err := r.WriteSlice(0, []byte{1, 2, 3, 4, 5})
	require.Error(t, err)

	var rerr *RAMError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, OutOfMemory, rerr.Kind)
}

func TestWriteSlice_OffsetPushesPastCapacity(t *testing.T) {
	r := New(4)
	err := r.WriteSlice(2, []byte{1, 2, 3})
	require.Error(t, err)

	var rerr *RAMError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, InvalidAddress, rerr.Kind)
}

func TestBytes_Snapshot(t *testing.T) {
	r := New(4)
	require.NoError(t, r.Write(3, 0x42))

	snap := r.Bytes()
	require.Len(t, snap, 4)
	assert.Equal(t, byte(0x42), snap[3])
}
