// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

package wire

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katzenpost/isc/core/wire/constants"
)

func TestEncodeHi(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	b, err := Encode(TypeText, "Hi")
	require.NoError(err)
	expected := []byte{'I', 'S', 'C', 't', 0x00, 0x02, 0, 0, 0, 'H', 0, 0, 0, 'i'}
	require.Equal(expected, b)
}

func TestEncodeMultibyte(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	b, err := Encode(TypeServer, "é€😀")
	require.NoError(err)
	require.Len(b, constants.HeaderLength+3*constants.SlotLength)
	require.Equal([]byte{0, 0, 0xc3, 0xa9}, b[6:10])
	require.Equal([]byte{0, 0xe2, 0x82, 0xac}, b[10:14])
	require.Equal([]byte{0xf0, 0x9f, 0x98, 0x80}, b[14:18])

	_, err = EncodeSlot(rune(0xd800))
	require.Error(err)
}

func TestTextRoundTrip(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	for _, s := range []string{
		"",
		"Hi",
		"hello world",
		"task shift encode 10",
		"Grüße, 世界 😀",
		"accepted 1234,5",
	} {
		f, err := NewTextFrame(TypeText, s)
		require.NoError(err)
		require.Equal(len([]rune(s))*constants.SlotLength, len(f.Payload))

		parsed, err := ReadFrame(bytes.NewReader(f.ToBytes()))
		require.NoError(err)
		require.Equal(TypeText, parsed.Type)
		require.Equal(s, parsed.Text())
	}
}

func TestTooManySlots(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	_, err := Encode(TypeText, string(make([]byte, constants.MaxSlots+1)))
	require.ErrorIs(err, ErrTooManySlots)
	_, err = EncodeValues(TypeServer, make([]uint32, constants.MaxSlots+1))
	require.ErrorIs(err, ErrTooManySlots)
}

func TestValues(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	values := []uint32{65, 68, 0xdeadbeef, 0}
	b, err := EncodeValues(TypeServer, values)
	require.NoError(err)

	f, err := ReadFrame(bytes.NewReader(b))
	require.NoError(err)
	require.Equal(TypeServer, f.Type)
	require.Equal(uint16(4), f.Count)
	require.Equal(values, f.Values())

	// Text slots read as integers are the big endian UTF-8 bytes.
	tf, err := NewTextFrame(TypeServer, "Aé")
	require.NoError(err)
	require.Equal([]uint32{65, 0xc3a9}, tf.Values())

	require.Equal([]uint32{0x0102}, DecodeValues([]byte{1, 2}))
}

func TestDecodeTextPlaceholder(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	payload := []byte{0, 0, 0, 'o', 0xde, 0xad, 0xbe, 0xef, 0, 0, 0, 'k'}
	require.Equal("o*k", DecodeText(payload))
	require.Equal("D", ValuesToText([]uint32{68}))
}

func TestHeader(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	h, err := ParseHeader([]byte{'I', 'S', 'C', 's', 0x01, 0x00})
	require.NoError(err)
	require.Equal(TypeServer, h.Type)
	require.Equal(uint16(256), h.Count)
	require.Equal(1024, h.PayloadLength())

	img := &Header{Type: TypeImage, Count: 128<<8 | 128}
	w, ht := img.ImageSize()
	require.Equal(128, w)
	require.Equal(128, ht)
	require.Equal(128*128*3, img.PayloadLength())

	_, err = ParseHeader([]byte{'I', 'S'})
	require.ErrorIs(err, ErrShortHeader)

	_, err = ParseHeader([]byte{'X', 'Y', 'Z', 's', 0, 0})
	var sigErr *SignatureError
	require.ErrorAs(err, &sigErr)
	require.Equal([]byte("XYZ"), sigErr.Got)
}

func TestReadFrameTruncated(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	b, err := Encode(TypeServer, "abc")
	require.NoError(err)

	_, err = ReadFrame(bytes.NewReader(b[:len(b)-2]))
	require.ErrorIs(err, io.ErrUnexpectedEOF)

	_, err = ReadFrame(bytes.NewReader(nil))
	require.ErrorIs(err, io.EOF)
}
