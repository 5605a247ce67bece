// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package constants holds the ISC wire protocol constants.
package constants

const (
	// Signature is the 3 byte magic that starts every frame.
	Signature = "ISC"

	// HeaderLength is the length of the frame header: signature, type tag
	// and the big endian slot count.
	HeaderLength = len(Signature) + 1 + 2

	// SlotLength is the length of one payload slot.
	SlotLength = 4

	// MaxSlots is the largest slot count the header can carry.
	MaxSlots = 1<<16 - 1

	// ImageBytesPerPixel is the number of payload bytes per image pixel.
	ImageBytesPerPixel = 3
)
