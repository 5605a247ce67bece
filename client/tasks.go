// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

package client

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/katzenpost/isc/core/cipher"
	"github.com/katzenpost/isc/core/numtheory"
)

const (
	dhPrimeBound    = 4999
	dhSecretBound   = 5000
	dhAcceptedReply = "accepted"
)

var decimalRe = regexp.MustCompile(`[0-9]+`)

// classicCipher solves shift and vigenere tasks: the server sends the key
// as the last word of its first frame and the text in the second one.
func (t *task) classicCipher() error {
	frames, err := t.exchange(t.cmd.Request(), 2, t.responseTimeout())
	if err != nil {
		return err
	}
	fields := strings.Fields(frames[0].Text())
	if len(fields) == 0 {
		return newProtocolError("no key in %q", frames[0].Text())
	}
	key := fields[len(fields)-1]

	out, err := applyCipher(CipherName(t.cmd.Name), frames[1].Values(), []string{key}, t.cmd.Op == opDecode)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			return newProtocolError("unusable key %q: %v", key, vErr)
		}
		return err
	}
	_, err = t.exchangeValues(out, 1, t.responseTimeout())
	return err
}

// rsaEncode encrypts the server's text with the public key n, e found in
// its first frame.
func (t *task) rsaEncode() error {
	frames, err := t.exchange(t.cmd.Request(), 2, t.responseTimeout())
	if err != nil {
		return err
	}
	nums := decimalRe.FindAllString(frames[0].Text(), -1)
	if len(nums) < 2 {
		return newProtocolError("no RSA key in %q", frames[0].Text())
	}
	out, err := applyCipher(CipherRSA, frames[1].Values(), nums[:2], false)
	if err != nil {
		return newProtocolError("unusable RSA key %v: %v", nums[:2], err)
	}
	_, err = t.exchangeValues(out, 1, t.responseTimeout())
	return err
}

// rsaDecode hands the server a fresh public key and decrypts what it sends
// back.
func (t *task) rsaDecode() error {
	key := cipher.GenerateRSAKey(t.c.rng)
	t.log.Debugf("Generated RSA key n=%d e=%d", key.N, key.E)

	if _, err := t.exchange(t.cmd.Request(), 1, t.responseTimeout()); err != nil {
		return err
	}
	frames, err := t.exchange(key.String(), 1, t.responseTimeout())
	if err != nil {
		return err
	}
	out, err := cipher.RSAApply(frames[0].Values(), key.D, key.N)
	if err != nil {
		return err
	}
	_, err = t.exchangeValues(out, 1, t.responseTimeout())
	return err
}

// diffieHellman agrees on a shared secret with the server over a small
// prime field proposed by the client.
func (t *task) diffieHellman() error {
	rt := t.responseTimeout()
	if _, err := t.exchange(t.cmd.Request(), 1, rt); err != nil {
		return err
	}

	p := numtheory.LargestPrimeAtMost(numtheory.RandomInRange(t.c.rng, 2, dhPrimeBound))
	g := numtheory.PrimitiveRoot(p)
	frames, err := t.exchange(fmt.Sprintf("%d,%d", p, g), 2, rt)
	if err != nil {
		return err
	}
	if reply := frames[0].Text(); !strings.Contains(reply, dhAcceptedReply) {
		return &ProtocolMismatchError{Reply: reply}
	}
	b, err := strconv.ParseInt(strings.TrimSpace(frames[1].Text()), 10, 64)
	if err != nil {
		return newProtocolError("server public value %q is not a number", frames[1].Text())
	}

	a := numtheory.RandomInRange(t.c.rng, 1, dhSecretBound)
	if _, err = t.exchange(strconv.FormatInt(numtheory.PowMod(g, a, p), 10), 1, rt); err != nil {
		return err
	}
	k := numtheory.PowMod(b, a, p)
	t.log.Debugf("Shared secret over p=%d g=%d: %d", p, g, k)
	err = t.send(strconv.FormatInt(k, 10))
	t.conn.inbox.Clear()
	return err
}

// hashVerify checks whether the digest the server claims matches its
// message.
func (t *task) hashVerify() error {
	frames, err := t.exchange(t.cmd.Request(), 3, t.hashResponseTimeout())
	if err != nil {
		return err
	}
	got := cipher.SHA256Hex(frames[1].Text())
	claimed := strings.ToLower(strings.TrimSpace(frames[2].Text()))
	_, err = t.exchange(strconv.FormatBool(got == claimed), 1, t.responseTimeout())
	return err
}

// hashCompute answers with the digest of the server's message.
func (t *task) hashCompute() error {
	frames, err := t.exchange(t.cmd.Request(), 2, t.hashResponseTimeout())
	if err != nil {
		return err
	}
	_, err = t.exchange(cipher.SHA256Hex(frames[1].Text()), 1, t.responseTimeout())
	return err
}
