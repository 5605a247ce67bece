// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

package client

import (
	"strconv"

	"github.com/katzenpost/isc/core/cipher"
	"github.com/katzenpost/isc/core/wire"
)

func parseKeyInt(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, newValidationError("Key %q is not a number.", s)
	}
	return v, nil
}

// applyCipher runs the named cipher over values.  decrypt selects the
// inverse direction for shift and vigenere, for RSA the key already holds
// the right exponent.
func applyCipher(name CipherName, values []uint32, key []string, decrypt bool) ([]uint32, error) {
	switch name {
	case CipherShift:
		k, err := parseKeyInt(key[0])
		if err != nil {
			return nil, err
		}
		if decrypt {
			return cipher.Unshift(values, k), nil
		}
		return cipher.Shift(values, k), nil
	case CipherVigenere:
		var (
			out []uint32
			err error
		)
		if decrypt {
			out, err = cipher.VigenereDecode(values, key[0])
		} else {
			out, err = cipher.VigenereEncode(values, key[0])
		}
		if err != nil {
			return nil, &ValidationError{Msg: err.Error()}
		}
		return out, nil
	case CipherRSA:
		n, err := parseKeyInt(key[0])
		if err != nil {
			return nil, err
		}
		exp, err := parseKeyInt(key[1])
		if err != nil {
			return nil, err
		}
		out, err := cipher.RSAApply(values, exp, n)
		if err != nil {
			return nil, &ValidationError{Msg: err.Error()}
		}
		return out, nil
	default:
		return nil, newValidationError("Unknown cipher %q.", name)
	}
}

// crypt encrypts the message locally and sends the ciphertext, rendered as
// text, as an ordinary chat message.
func (c *Client) crypt(cmd *CryptCommand) error {
	f, err := wire.NewTextFrame(wire.TypeText, cmd.Message)
	if err != nil {
		return newValidationError("Can not encode message: %v", err)
	}
	out, err := applyCipher(cmd.Cipher, f.Values(), cmd.Key, false)
	if err != nil {
		return err
	}
	return c.sendChatValues(out)
}

// decrypt decrypts an archived server message and reports the result on
// the decoded stream.  Nothing is sent.
func (c *Client) decrypt(cmd *DecryptCommand) error {
	f, err := c.archive.Get(cmd.Index)
	if err != nil {
		return err
	}
	out, err := applyCipher(cmd.Cipher, f.Values(), cmd.Key, true)
	if err != nil {
		return err
	}
	c.emitDecoded(wire.ValuesToText(out))
	return nil
}

func (c *Client) clear() error {
	c.emit(&ClearEvent{})
	return nil
}
