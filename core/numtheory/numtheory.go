// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package numtheory provides the small-integer number theory used by the
// RSA and Diffie-Hellman exchanges.  All routines use trial division and are
// only meant for the few-thousand sized parameters the teaching server works
// with.
package numtheory

import (
	"math"
	"math/big"
	mRand "math/rand"
)

// IsPrime returns true iff n is prime.
func IsPrime(n int64) bool {
	if n <= 3 {
		return n > 1
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}
	limit := int64(math.Sqrt(float64(n))) + 1
	for i := int64(5); i < limit; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}

// NextPrime returns the smallest prime strictly greater than n.
func NextPrime(n int64) int64 {
	p := n + 1
	for !IsPrime(p) {
		p++
	}
	return p
}

// LargestPrimeAtMost scans downward from n-1 and returns the first prime it
// finds above 3, or 3 when there is none.
func LargestPrimeAtMost(n int64) int64 {
	for p := n - 1; p > 3; p-- {
		if IsPrime(p) {
			return p
		}
	}
	return 3
}

// PrimeFactors returns the prime factorization of n in ascending order,
// with multiplicity.  n < 2 has no factors.
func PrimeFactors(n int64) []int64 {
	var factors []int64
	if n < 2 {
		return factors
	}
	d := int64(2)
	for n != 1 {
		if n%d == 0 {
			n /= d
			factors = append(factors, d)
			continue
		}
		d = NextPrime(d)
	}
	return factors
}

// DistinctPrimeFactors returns the distinct prime factors of n in ascending
// order.
func DistinctPrimeFactors(n int64) []int64 {
	var out []int64
	for _, f := range PrimeFactors(n) {
		if len(out) == 0 || out[len(out)-1] != f {
			out = append(out, f)
		}
	}
	return out
}

// PrimitiveRoot returns the smallest g >= 2 such that g^((p-1)/q) mod p != 1
// for every distinct prime factor q of p-1.  p must be prime.
func PrimitiveRoot(p int64) int64 {
	factors := DistinctPrimeFactors(p - 1)
	for g := int64(2); ; g++ {
		ok := true
		for _, q := range factors {
			if PowMod(g, (p-1)/q, p) == 1 {
				ok = false
				break
			}
		}
		if ok {
			return g
		}
	}
}

// GCD returns the greatest common divisor of a and b.
func GCD(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// RandomCoprime draws uniformly from [2, n-1] until it finds a value coprime
// with n.  n must be at least 3.
func RandomCoprime(rng *mRand.Rand, n int64) int64 {
	for {
		e := 2 + rng.Int63n(n-2)
		if GCD(e, n) == 1 {
			return e
		}
	}
}

// RandomInRange returns a uniform integer in the closed interval [lo, hi].
func RandomInRange(rng *mRand.Rand, lo, hi int64) int64 {
	return lo + rng.Int63n(hi-lo+1)
}

// PowMod returns base^exp mod m for exp >= 0 and m > 0.  Negative bases are
// reduced into [0, m) first.
func PowMod(base, exp, m int64) int64 {
	b := big.NewInt(base)
	r := new(big.Int).Exp(b.Mod(b, big.NewInt(m)), big.NewInt(exp), big.NewInt(m))
	return r.Int64()
}

// ModInverse returns x such that a*x = 1 mod m, and false if a is not
// invertible modulo m.
func ModInverse(a, m int64) (int64, bool) {
	r := new(big.Int).ModInverse(big.NewInt(a), big.NewInt(m))
	if r == nil {
		return 0, false
	}
	return r.Int64(), true
}

// MultiplicativeOrder returns the smallest k > 0 with g^k = 1 mod p, or 0 if
// there is none.
func MultiplicativeOrder(g, p int64) int64 {
	v := g % p
	for k := int64(1); k < p; k++ {
		if v == 1 {
			return k
		}
		v = v * g % p
	}
	return 0
}
