package snapshot

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fakeBoard struct {
	prg  uint8
	mir  uint8
	wram []byte
}

func newFakeBoard(r *Registry) *fakeBoard {
	b := &fakeBoard{wram: make([]byte, 0x2000)}
	r.MustAddUint8("PREG", &b.prg)
	r.MustAddUint8("MREG", &b.mir)
	r.MustAdd("WRAM", b.wram)
	return b
}

func TestRoundTrip(t *testing.T) {
	var src Registry
	b := newFakeBoard(&src)
	b.prg = 0x1F
	b.mir = 1
	for i := range b.wram {
		b.wram[i] = uint8(i * 7)
	}

	var buf bytes.Buffer
	require.NoError(t, src.Save(&buf))

	var dst Registry
	b2 := newFakeBoard(&dst)
	version, err := dst.Load(&buf)
	require.NoError(t, err)
	require.Equal(t, Version, version)

	if diff := cmp.Diff(b, b2, cmp.AllowUnexported(fakeBoard{})); diff != "" {
		t.Errorf("restored state mismatch (-want +got):\n%s", diff)
	}
}

func TestRegions(t *testing.T) {
	var r Registry
	newFakeBoard(&r)

	want := []RegionInfo{
		{ID: "PREG", Size: 1},
		{ID: "MREG", Size: 1},
		{ID: "WRAM", Size: 0x2000},
	}
	if diff := cmp.Diff(want, r.Regions()); diff != "" {
		t.Errorf("Regions() mismatch (-want +got):\n%s", diff)
	}

	r.Remove("MREG")
	r.Remove("XXXX")
	require.Len(t, r.Regions(), 2)
	require.Equal(t, "WRAM", r.Regions()[1].ID)
}

func TestSaveLayout(t *testing.T) {
	var r Registry
	b := newFakeBoard(&r)
	b.prg = 0x12
	b.mir = 0x01

	var buf bytes.Buffer
	require.NoError(t, r.Save(&buf))
	raw := buf.Bytes()

	require.Equal(t, Magic, string(raw[:4]))
	require.Equal(t, uint32(Version), binary.LittleEndian.Uint32(raw[4:8]))

	// First chunk: PREG, 1 byte.
	require.Equal(t, "PREG", string(raw[8:12]))
	require.Equal(t, uint32(1), binary.LittleEndian.Uint32(raw[12:16]))
	require.Equal(t, uint8(0x12), raw[16])

	// Second chunk: MREG, 1 byte.
	require.Equal(t, "MREG", string(raw[17:21]))
	require.Equal(t, uint32(1), binary.LittleEndian.Uint32(raw[21:25]))
	require.Equal(t, uint8(0x01), raw[25])

	// Third chunk: WRAM, 8KB.
	require.Equal(t, "WRAM", string(raw[26:30]))
	require.Equal(t, uint32(0x2000), binary.LittleEndian.Uint32(raw[30:34]))
	require.Len(t, raw, 34+0x2000)
}

func TestAddErrors(t *testing.T) {
	var r Registry
	var v uint8

	require.Error(t, r.Add("ABC", []byte{0}))
	require.Error(t, r.Add("ABCDE", []byte{0}))
	require.Error(t, r.Add("ABCD", nil))
	require.NoError(t, r.Add("ABCD", []byte{0}))
	require.Error(t, r.Add("ABCD", []byte{0}))
	require.Panics(t, func() { r.MustAddUint8("ABCD", &v) })
}

func TestLoadSkipsUnknownAndMissing(t *testing.T) {
	// Snapshot with an extra region unknown to the loader.
	var src Registry
	b := newFakeBoard(&src)
	b.prg = 3
	extra := []byte{1, 2, 3}
	src.MustAdd("XTRA", extra)

	var buf bytes.Buffer
	require.NoError(t, src.Save(&buf))

	// Loader has an extra region absent from the snapshot.
	var dst Registry
	b2 := newFakeBoard(&dst)
	chrr := []byte{0xAA, 0xBB}
	dst.MustAdd("CHRR", chrr)

	_, err := dst.Load(&buf)
	require.NoError(t, err)
	require.Equal(t, uint8(3), b2.prg)
	require.Equal(t, []byte{0xAA, 0xBB}, chrr)
}

func TestLoadErrors(t *testing.T) {
	var src Registry
	b := newFakeBoard(&src)
	b.prg = 0x0F

	var buf bytes.Buffer
	require.NoError(t, src.Save(&buf))
	good := buf.Bytes()

	t.Run("bad magic", func(t *testing.T) {
		var dst Registry
		newFakeBoard(&dst)
		bad := append([]byte("XXXX"), good[4:]...)
		_, err := dst.Load(bytes.NewReader(bad))
		require.ErrorIs(t, err, ErrBadMagic)
	})

	t.Run("future version", func(t *testing.T) {
		var dst Registry
		newFakeBoard(&dst)
		bad := bytes.Clone(good)
		binary.LittleEndian.PutUint32(bad[4:8], Version+1)
		_, err := dst.Load(bytes.NewReader(bad))
		require.ErrorIs(t, err, ErrVersion)
	})

	t.Run("size mismatch", func(t *testing.T) {
		var dst Registry
		var prg uint8
		dst.MustAddUint8("PREG", &prg)
		dst.MustAdd("MREG", make([]byte, 2))
		_, err := dst.Load(bytes.NewReader(good))
		require.ErrorIs(t, err, ErrSizeMismatch)
		// Nothing committed.
		require.Equal(t, uint8(0), prg)
	})

	t.Run("truncated", func(t *testing.T) {
		var dst Registry
		b2 := newFakeBoard(&dst)
		_, err := dst.Load(bytes.NewReader(good[:len(good)-10]))
		require.Error(t, err)
		require.Equal(t, uint8(0), b2.prg)
	})
}
