// SPDX-License-Identifier: EPL-2.0

package ebml

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseVint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      []byte
		want    uint64
		n       int
		unknown bool
	}{
		{"one byte", []byte{0x81}, 1, 1, false},
		{"one byte max", []byte{0xfe}, 126, 1, false},
		{"one byte unknown", []byte{0xff}, 127, 1, true},
		{"two bytes", []byte{0x40, 0x02}, 2, 2, false},
		{"four bytes", []byte{0x10, 0x00, 0x01, 0x00}, 256, 4, false},
		{"eight bytes unknown", []byte{0x01, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, 1<<56 - 1, 8, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, n, unknown, err := ParseVint(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, v)
			require.Equal(t, tt.n, n)
			require.Equal(t, tt.unknown, unknown)
		})
	}

	_, _, _, err := ParseVint([]byte{0x00})
	require.ErrorIs(t, err, ErrParse)
	_, _, _, err = ParseVint([]byte{0x40})
	require.ErrorIs(t, err, ErrParse)
}

func TestParseSignedVint(t *testing.T) {
	t.Parallel()

	v, n, err := ParseSignedVint([]byte{0xbf})
	require.NoError(t, err)
	require.Equal(t, int64(0), v)
	require.Equal(t, 1, n)

	v, _, err = ParseSignedVint([]byte{0x80})
	require.NoError(t, err)
	require.Equal(t, int64(-63), v)

	v, n, err = ParseSignedVint([]byte{0x60, 0x00})
	require.NoError(t, err)
	require.Equal(t, int64(0x2000-0x1fff), v)
	require.Equal(t, 2, n)
}

func TestParseID(t *testing.T) {
	t.Parallel()

	id, n, err := ParseID([]byte{0x1a, 0x45, 0xdf, 0xa3, 0x00})
	require.NoError(t, err)
	require.Equal(t, IDHeader, id)
	require.Equal(t, 4, n)

	_, _, err = ParseID([]byte{0x08})
	require.ErrorIs(t, err, ErrParse)
	_, _, err = ParseID([]byte{0x42})
	require.ErrorIs(t, err, ErrParse)
}

func TestValues(t *testing.T) {
	t.Parallel()

	u, err := Uint([]byte{0x01, 0x00})
	require.NoError(t, err)
	require.Equal(t, uint64(256), u)

	i, err := Int([]byte{0xff, 0xfe})
	require.NoError(t, err)
	require.Equal(t, int64(-2), i)

	f, err := Float([]byte{0x40, 0x49, 0x0f, 0xdb})
	require.NoError(t, err)
	require.InDelta(t, 3.14159, f, 1e-5)

	f, err = Float([]byte{0x40, 0xe5, 0x88, 0x80, 0x00, 0x00, 0x00, 0x00})
	require.NoError(t, err)
	require.Equal(t, 44100.0, f)

	_, err = Float([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrParse)

	require.Equal(t, "webm", String([]byte("webm\x00\x00")))
}

func TestReader(t *testing.T) {
	t.Parallel()

	// Void(3 bytes) then DocType "webm" then a lone ID byte.
	data := []byte{
		0xec, 0x83, 0x00, 0x00, 0x00,
		0x42, 0x82, 0x84, 'w', 'e', 'b', 'm',
		0xa3,
	}
	r := NewReader(bytes.NewReader(data))

	h, err := r.ReadHeader()
	require.NoError(t, err)
	require.Equal(t, Header{ID: IDVoid, Size: 3, Offset: 0, DataOffset: 2}, h)
	require.Equal(t, int64(5), h.End())
	require.NoError(t, r.Skip(h.Size))
	require.Equal(t, int64(5), r.Pos())

	h, err = r.ReadHeader()
	require.NoError(t, err)
	require.Equal(t, IDDocType, h.ID)
	b, err := r.ReadPayload(h.Size)
	require.NoError(t, err)
	require.Equal(t, "webm", String(b))

	_, err = r.ReadHeader()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	require.NoError(t, r.SeekTo(5))
	h, err = r.ReadHeader()
	require.NoError(t, err)
	require.Equal(t, int64(5), h.Offset)
	require.NoError(t, r.Skip(h.Size))

	require.NoError(t, r.SeekTo(int64(len(data)-1)))
	require.NoError(t, r.SeekTo(int64(len(data))))
	_, err = r.ReadHeader()
	require.True(t, errors.Is(err, io.EOF))
}

func TestReader_Limits(t *testing.T) {
	t.Parallel()

	r := NewReader(bytes.NewReader([]byte{0xa3, 0x01, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}))
	h, err := r.ReadHeader()
	require.NoError(t, err)
	require.True(t, h.Unknown)
	require.Equal(t, int64(-1), h.End())

	r.MaxPayload = 4
	_, err = r.ReadPayload(5)
	require.ErrorIs(t, err, ErrTooLarge)

	r = NewReader(bytes.NewReader([]byte{0x00}))
	_, err = r.ReadHeader()
	require.ErrorIs(t, err, ErrParse)
}

func TestWalk(t *testing.T) {
	t.Parallel()

	data := []byte{
		0xd7, 0x81, 0x01,
		0x86, 0x85, 'V', '_', 'V', 'P', '8',
	}
	var ids []uint32
	err := Walk(data, func(id uint32, payload []byte) error {
		ids = append(ids, id)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []uint32{0xd7, 0x86}, ids)

	err = Walk([]byte{0xd7, 0x85, 0x01}, func(uint32, []byte) error { return nil })
	require.ErrorIs(t, err, ErrParse)

	var got []byte
	err = Walk([]byte{0xa3, 0xff, 1, 2, 3}, func(_ uint32, payload []byte) error {
		got = payload
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, got)
}
