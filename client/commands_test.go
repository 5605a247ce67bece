// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

package client

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTask(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cmd, err := ParseCommand("/task shift encode 10")
	require.NoError(err)
	require.Equal(CommandTask, cmd.Kind)
	require.Equal(&TaskCommand{Name: "shift", Op: "encode", Count: 10}, cmd.Task)
	require.Equal("task shift encode 10", cmd.Task.Request())

	cmd, err = ParseCommand("/task rsa decode 1")
	require.NoError(err)
	require.Equal("task RSA decode 1", cmd.Task.Request())

	cmd, err = ParseCommand("/task hash verify")
	require.NoError(err)
	require.Equal("task hash verify", cmd.Task.Request())

	cmd, err = ParseCommand("task DifHel")
	require.NoError(err)
	require.Equal("task DifHel", cmd.Task.Request())

	cmd, err = ParseCommand("/task vigenere decode 10000")
	require.NoError(err)
	require.Equal(10000, cmd.Task.Count)
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	for _, line := range []string{
		"/",
		"/bogus",
		"/task",
		"/task shift",
		"/task shift encode",
		"/task shift encode ten",
		"/task shift encode 0",
		"/task shift encode 10001",
		"/task shift encode +5",
		"/task shift encode -5",
		"/task shift encode 99999999999999999999",
		"/task shift rotate 5",
		"/task caesar encode 5",
		"/task hash",
		"/task hash sign",
		"/crypt shift",
		"/crypt shift abc",
		"/crypt RSA abc 3233",
		"/crypt rot13 abc 1",
		"/decrypt shift x 1",
		"/decrypt shift 0 1",
		"/decrypt RSA 1 3233",
	} {
		_, err := ParseCommand(line)
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr), "%q: %v", line, err)
	}
}

func TestParseOffline(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cmd, err := ParseCommand("/crypt RSA hi 3233 17")
	require.NoError(err)
	require.Equal(CommandCrypt, cmd.Kind)
	require.Equal(&CryptCommand{Cipher: CipherRSA, Message: "hi", Key: []string{"3233", "17"}}, cmd.Crypt)

	cmd, err = ParseCommand("/decrypt vigenere 2 key")
	require.NoError(err)
	require.Equal(CommandDecrypt, cmd.Kind)
	require.Equal(&DecryptCommand{Cipher: CipherVigenere, Index: 2, Key: []string{"key"}}, cmd.Decrypt)

	cmd, err = ParseCommand("/clear")
	require.NoError(err)
	require.Equal(CommandClear, cmd.Kind)
}

func TestApplyCipher(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	values := []uint32{'a', 'b', 'c'}
	out, err := applyCipher(CipherShift, values, []string{"3"}, false)
	require.NoError(err)
	require.Equal([]uint32{'d', 'e', 'f'}, out)
	out, err = applyCipher(CipherShift, out, []string{"3"}, true)
	require.NoError(err)
	require.Equal(values, out)

	enc, err := applyCipher(CipherRSA, []uint32{65}, []string{"3233", "17"}, false)
	require.NoError(err)
	require.Equal([]uint32{2790}, enc)
	dec, err := applyCipher(CipherRSA, enc, []string{"3233", "2753"}, true)
	require.NoError(err)
	require.Equal([]uint32{65}, dec)

	_, err = applyCipher(CipherShift, values, []string{"x"}, false)
	var vErr *ValidationError
	require.True(errors.As(err, &vErr))
}
