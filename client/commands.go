// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

package client

import (
	"strconv"
	"strings"
)

const (
	commandPrefix = "/"

	// MinTaskCount and MaxTaskCount bound the word count of encode and
	// decode tasks.
	MinTaskCount = 1
	MaxTaskCount = 10000
)

// CommandKind is the kind of a parsed command.
type CommandKind int

const (
	// CommandTask asks the server for an exercise.
	CommandTask CommandKind = iota

	// CommandCrypt encrypts a message locally and sends the result as chat.
	CommandCrypt

	// CommandDecrypt decrypts an archived server message locally.
	CommandDecrypt

	// CommandClear clears the chat view.
	CommandClear
)

// CipherName names one of the supported ciphers.
type CipherName string

// The cipher and task names understood by the server.
const (
	CipherShift    CipherName = "shift"
	CipherVigenere CipherName = "vigenere"
	CipherRSA      CipherName = "RSA"

	taskHash = "hash"
	taskDH   = "DifHel"

	opEncode = "encode"
	opDecode = "decode"
	opVerify = "verify"
	opHash   = "hash"
)

// Command is a parsed user command.  Exactly one of Task, Crypt and Decrypt
// is set, matching Kind, except for CommandClear which carries nothing.
type Command struct {
	Kind CommandKind

	Task    *TaskCommand
	Crypt   *CryptCommand
	Decrypt *DecryptCommand
}

// TaskCommand asks the server for an exercise.
type TaskCommand struct {
	// Name is the cipher or task name, e.g. "shift" or "DifHel".
	Name string

	// Op is the operation, e.g. "encode".  Empty for DifHel.
	Op string

	// Count is the requested word count of encode and decode tasks.
	Count int
}

// Request returns the request text sent to the server.
func (t *TaskCommand) Request() string {
	parts := []string{"task", t.Name}
	if t.Op != "" {
		parts = append(parts, t.Op)
	}
	if t.Count > 0 {
		parts = append(parts, strconv.Itoa(t.Count))
	}
	return strings.Join(parts, " ")
}

// CryptCommand encrypts Message with the given key.
type CryptCommand struct {
	Cipher  CipherName
	Message string
	Key     []string
}

// DecryptCommand decrypts the Index-th newest archived server message.
type DecryptCommand struct {
	Cipher CipherName
	Index  int
	Key    []string
}

func parseCipherName(s string) (CipherName, error) {
	for _, n := range []CipherName{CipherShift, CipherVigenere, CipherRSA} {
		if strings.EqualFold(s, string(n)) {
			return n, nil
		}
	}
	return "", newValidationError("Unknown cipher %q, expected shift, vigenere or RSA.", s)
}

func keyArity(n CipherName) int {
	if n == CipherRSA {
		return 2
	}
	return 1
}

// ParseCommand parses one command line, with or without the leading "/".
// Malformed commands yield a *ValidationError.
func ParseCommand(line string) (*Command, error) {
	fields := strings.Fields(strings.TrimPrefix(line, commandPrefix))
	if len(fields) == 0 {
		return nil, newValidationError("Empty command.")
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "task":
		t, err := parseTask(args)
		if err != nil {
			return nil, err
		}
		return &Command{Kind: CommandTask, Task: t}, nil
	case "crypt":
		if len(args) < 2 {
			return nil, newValidationError("Usage: /crypt <cipher> <message> <key...>")
		}
		cn, err := parseCipherName(args[0])
		if err != nil {
			return nil, err
		}
		if len(args[2:]) != keyArity(cn) {
			return nil, newValidationError("The %s cipher needs %d key value(s).", cn, keyArity(cn))
		}
		return &Command{Kind: CommandCrypt, Crypt: &CryptCommand{Cipher: cn, Message: args[1], Key: args[2:]}}, nil
	case "decrypt":
		if len(args) < 2 {
			return nil, newValidationError("Usage: /decrypt <cipher> <index> <key...>")
		}
		cn, err := parseCipherName(args[0])
		if err != nil {
			return nil, err
		}
		idx, err := strconv.Atoi(args[1])
		if err != nil || idx < 1 {
			return nil, newValidationError("Message index must be a positive number.")
		}
		if len(args[2:]) != keyArity(cn) {
			return nil, newValidationError("The %s cipher needs %d key value(s).", cn, keyArity(cn))
		}
		return &Command{Kind: CommandDecrypt, Decrypt: &DecryptCommand{Cipher: cn, Index: idx, Key: args[2:]}}, nil
	case "clear":
		return &Command{Kind: CommandClear}, nil
	default:
		return nil, newValidationError("Unknown command %q.", commandPrefix+name)
	}
}

func parseTask(args []string) (*TaskCommand, error) {
	if len(args) == 0 {
		return nil, newValidationError("More arguments needed: /task <name> [operation] [count]")
	}
	t := &TaskCommand{Name: args[0]}
	switch {
	case args[0] == taskDH:
		return t, nil
	case args[0] == taskHash:
		if len(args) < 2 || (args[1] != opVerify && args[1] != opHash) {
			return nil, newValidationError("Usage: /task hash <verify|hash>")
		}
		t.Op = args[1]
		return t, nil
	}

	cn, err := parseCipherName(args[0])
	if err != nil {
		return nil, newValidationError("Unknown task %q.", args[0])
	}
	t.Name = string(cn)
	if len(args) < 2 || (args[1] != opEncode && args[1] != opDecode) {
		return nil, newValidationError("Usage: /task %s <encode|decode> <count>", cn)
	}
	t.Op = args[1]
	if len(args) < 3 {
		return nil, newValidationError("You must provide a number of words.")
	}
	if !isDigits(args[2]) {
		return nil, newValidationError("You must provide a number of words.")
	}
	n, err := strconv.Atoi(args[2])
	if err != nil {
		return nil, newValidationError("Number must be %d<=x<=%d.", MinTaskCount, MaxTaskCount)
	}
	if n < MinTaskCount || n > MaxTaskCount {
		return nil, newValidationError("Number must be %d<=x<=%d.", MinTaskCount, MaxTaskCount)
	}
	t.Count = n
	return t, nil
}

func (c *Client) initCommands() {
	c.commands = map[CommandKind]func(*Command) error{
		CommandTask:    func(cmd *Command) error { return c.startTask(cmd.Task) },
		CommandCrypt:   func(cmd *Command) error { return c.crypt(cmd.Crypt) },
		CommandDecrypt: func(cmd *Command) error { return c.decrypt(cmd.Decrypt) },
		CommandClear:   func(*Command) error { return c.clear() },
	}
	c.initTasks()
}

// DispatchCommand parses and executes one command line.  Errors are both
// returned and reported to the EventSink.  Tasks run in the background, so
// a nil return only means the task was started.
func (c *Client) DispatchCommand(line string) error {
	cmd, err := ParseCommand(line)
	if err != nil {
		c.emitError(err)
		return err
	}
	if err = c.commands[cmd.Kind](cmd); err != nil {
		c.emitError(err)
	}
	return err
}

// isDigits reports whether s is a non-empty run of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
