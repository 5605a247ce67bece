// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

package cipher

import (
	"testing"

	"github.com/katzenpost/hpqc/rand"
	"github.com/stretchr/testify/require"

	"github.com/katzenpost/isc/core/numtheory"
)

func TestShift(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	require.Equal([]uint32{68}, Shift([]uint32{65}, 3))
	require.Equal([]uint32{65}, Unshift([]uint32{68}, 3))

	values := []uint32{0, 1, 65, 0x41, 0xe282ac, 0xffffffff}
	for _, k := range []int64{0, 1, 3, -7, 1 << 31, -(1 << 40), 123456789} {
		require.Equal(values, Unshift(Shift(values, k), k), "key %d", k)
	}
}

func TestVigenere(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	values := []uint32{'H', 'e', 'l', 'l', 'o'}
	enc, err := VigenereEncode(values, "ab")
	require.NoError(err)
	require.Equal([]uint32{'H' + 'a', 'e' + 'b', 'l' + 'a', 'l' + 'b', 'o' + 'a'}, enc)

	for _, key := range []string{"k", "key", "abcdefgh", "clé", "€x"} {
		enc, err := VigenereEncode(values, key)
		require.NoError(err)
		dec, err := VigenereDecode(enc, key)
		require.NoError(err)
		require.Equal(values, dec, "key %q", key)
	}

	_, err = VigenereEncode(values, "")
	require.ErrorIs(err, ErrEmptyKey)
}

func TestKeyValue(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	require.Equal(uint32('a'), KeyValue('a'))
	require.Equal(uint32(0xc3a9), KeyValue('é'))
	require.Equal(uint32(0xe282ac), KeyValue('€'))
}

func TestRSAKnownKey(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	key, err := NewRSAKey(61, 53, 17)
	require.NoError(err)
	require.Equal(int64(3233), key.N)
	require.Equal(int64(2753), key.D)
	require.Equal("3233,17", key.String())

	enc, err := RSAApply([]uint32{65}, key.E, key.N)
	require.NoError(err)
	require.Equal(uint32(numtheory.PowMod(65, 17, 3233)), enc[0])

	dec, err := RSAApply(enc, key.D, key.N)
	require.NoError(err)
	require.Equal([]uint32{65}, dec)

	all := make([]uint32, key.N)
	for m := range all {
		all[m] = uint32(m)
	}
	enc, err = RSAApply(all, key.E, key.N)
	require.NoError(err)
	dec, err = RSAApply(enc, key.D, key.N)
	require.NoError(err)
	require.Equal(all, dec)

	_, err = NewRSAKey(61, 53, 4)
	require.Error(err)
	_, err = RSAApply(all, 3, 1)
	require.Error(err)

	// Residues must fit a 32-bit slot.
	_, err = RSAApply([]uint32{2}, 35, 10000000000)
	require.Error(err)
	out, err := RSAApply([]uint32{2}, 31, 1<<32)
	require.NoError(err)
	require.Equal([]uint32{1 << 31}, out)
}

func TestGenerateRSAKey(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	rng := rand.NewMath()
	for i := 0; i < 20; i++ {
		key := GenerateRSAKey(rng)
		require.True(numtheory.IsPrime(key.P))
		require.True(numtheory.IsPrime(key.Q))
		require.NotEqual(key.P, key.Q)
		require.Equal(key.P*key.Q, key.N)
		k := (key.P - 1) * (key.Q - 1)
		require.Equal(int64(1), numtheory.GCD(key.E, k))
		require.Equal(int64(1), key.E*key.D%k)

		msg := make([]uint32, 256)
		for j := range msg {
			msg[j] = uint32(rng.Int63n(key.N))
		}
		enc, err := RSAApply(msg, key.E, key.N)
		require.NoError(err)
		dec, err := RSAApply(enc, key.D, key.N)
		require.NoError(err)
		require.Equal(msg, dec)
	}
}

func TestSHA256Hex(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	require.Equal("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", SHA256Hex("abc"))
	require.Equal("e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", SHA256Hex(""))
}
