// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package cipher implements the classroom ciphers spoken with the teaching
// server.  Every cipher operates on slot values, the 32 bit integers carried
// by the wire codec, and wraps results modulo 2^32 to fit a slot.
package cipher

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	mRand "math/rand"
	"unicode/utf8"

	"github.com/katzenpost/isc/core/numtheory"
)

const (
	// RSAPrimeBound is the upper bound of the random draw each RSA prime is
	// searched from.
	RSAPrimeBound = 1000
)

// ErrEmptyKey is returned when a Vigenère key has no characters.
var ErrEmptyKey = errors.New("cipher: empty key")

// Shift adds key to every value.
func Shift(values []uint32, key int64) []uint32 {
	out := make([]uint32, len(values))
	for i, v := range values {
		out[i] = uint32(int64(v) + key)
	}
	return out
}

// Unshift reverses Shift.
func Unshift(values []uint32, key int64) []uint32 {
	return Shift(values, -key)
}

// KeyValue returns the integer a Vigenère key character contributes: its
// UTF-8 encoding read as a big endian integer.  For ASCII this is simply the
// code point.
func KeyValue(r rune) uint32 {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	var v uint32
	for _, b := range buf[:n] {
		v = v<<8 | uint32(b)
	}
	return v
}

func vigenere(values []uint32, key string, sign int64) ([]uint32, error) {
	k := []rune(key)
	if len(k) == 0 {
		return nil, ErrEmptyKey
	}
	out := make([]uint32, len(values))
	for i, v := range values {
		out[i] = uint32(int64(v) + sign*int64(KeyValue(k[i%len(k)])))
	}
	return out, nil
}

// VigenereEncode adds the value of key[i mod len(key)] to the i-th value.
func VigenereEncode(values []uint32, key string) ([]uint32, error) {
	return vigenere(values, key, 1)
}

// VigenereDecode reverses VigenereEncode.
func VigenereDecode(values []uint32, key string) ([]uint32, error) {
	return vigenere(values, key, -1)
}

// RSAKey is an ephemeral textbook RSA key pair.
type RSAKey struct {
	P, Q int64

	// N is the modulus, E the public and D the private exponent.
	N, E, D int64
}

// String returns the public half the way it is sent to the server.
func (k *RSAKey) String() string {
	return fmt.Sprintf("%d,%d", k.N, k.E)
}

// NewRSAKey derives a key from the primes p, q and the public exponent e.
func NewRSAKey(p, q, e int64) (*RSAKey, error) {
	k := (p - 1) * (q - 1)
	d, ok := numtheory.ModInverse(e, k)
	if !ok {
		return nil, fmt.Errorf("cipher: exponent %d is not invertible modulo %d", e, k)
	}
	return &RSAKey{P: p, Q: q, N: p * q, E: e, D: d}, nil
}

// GenerateRSAKey picks p and q as the next primes above independent uniform
// draws from [2, RSAPrimeBound] and a random public exponent coprime with
// (p-1)(q-1).  Equal primes are redrawn.
func GenerateRSAKey(rng *mRand.Rand) *RSAKey {
	for {
		p := numtheory.NextPrime(numtheory.RandomInRange(rng, 2, RSAPrimeBound))
		q := numtheory.NextPrime(numtheory.RandomInRange(rng, 2, RSAPrimeBound))
		if p == q {
			// n = p^2 does not decrypt correctly.
			continue
		}
		e := numtheory.RandomCoprime(rng, (p-1)*(q-1))
		if key, err := NewRSAKey(p, q, e); err == nil {
			return key
		}
	}
}

// RSAApply raises every value to exp modulo n.  It is used both to encrypt
// (exp = e) and to decrypt (exp = d).
func RSAApply(values []uint32, exp, n int64) ([]uint32, error) {
	if n <= 1 {
		return nil, fmt.Errorf("cipher: invalid RSA modulus %d", n)
	}
	if n > 1<<32 {
		return nil, fmt.Errorf("cipher: RSA modulus %d does not fit a slot", n)
	}
	if exp < 0 {
		return nil, fmt.Errorf("cipher: invalid RSA exponent %d", exp)
	}
	out := make([]uint32, len(values))
	for i, v := range values {
		out[i] = uint32(numtheory.PowMod(int64(v), exp, n))
	}
	return out, nil
}

// SHA256Hex returns the lowercase hex SHA-256 digest of the UTF-8 bytes of s.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
