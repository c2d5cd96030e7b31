// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_cosmos

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Cosmos app instruction set.
const (
	CLA = 0x55

	INSGetVersion         = 0x00
	INSPublicKeySECP256K1 = 0x01
	INSSignSECP256K1      = 0x02
	INSGetAddrSECP256K1   = 0x04

	// Dashboard instructions answered by whichever app is open.
	CLADashboard = 0xB0
	INSAppInfo   = 0x01

	PayloadInit = 0x00
	PayloadAdd  = 0x01
	PayloadLast = 0x02

	ChunkSize = 250
)

const (
	hdPathLength = 5
	hardened     = 0x80000000
)

// Status words reported by the device in the last two bytes of every reply.
const (
	SWOk                = 0x9000
	SWExecutionError    = 0x6400
	SWWrongLength       = 0x6700
	SWEmptyBuffer       = 0x6982
	SWOutputTooSmall    = 0x6983
	SWDataInvalid       = 0x6984
	SWConditionsNotMet  = 0x6985
	SWCommandNotAllowed = 0x6986
	SWBadKeyHandle      = 0x6A80
	SWInvalidP1P2       = 0x6B00
	SWInsNotSupported   = 0x6D00
	SWClaNotSupported   = 0x6E00
	SWUnknown           = 0x6F00
	SWSignVerifyError   = 0x6F01
)

// Raw device messages. The classifier keys on these exact strings.
const (
	MsgNoErrors          = "No errors"
	MsgU2FTimeout        = "U2F: Timeout"
	MsgAppNotOpen        = "Cosmos app does not seem to be open"
	MsgCommandNotAllowed = "Command not allowed"
	MsgUnknownErrorCode  = "Unknown error code"
	MsgEmptyMessage      = "Cannot sign an empty message"
)

var statusMessages = map[uint16]string{
	SWOk:                MsgNoErrors,
	SWExecutionError:    "Execution Error",
	SWWrongLength:       "Wrong Length",
	SWEmptyBuffer:       "Empty Buffer",
	SWOutputTooSmall:    "Output buffer too small",
	SWDataInvalid:       "Data is invalid",
	SWConditionsNotMet:  "Conditions not satisfied",
	SWCommandNotAllowed: MsgCommandNotAllowed,
	SWBadKeyHandle:      "Bad key handle",
	SWInvalidP1P2:       "Invalid P1/P2",
	SWInsNotSupported:   "Instruction not supported",
	SWClaNotSupported:   MsgAppNotOpen,
	SWUnknown:           "Unknown error",
	SWSignVerifyError:   "Sign/verify error",
}

// StatusMessage returns the device message for a status word.
func StatusMessage(sw uint16) string {
	if msg, ok := statusMessages[sw]; ok {
		return msg
	}
	return MsgUnknownErrorCode
}

// serializePath encodes a BIP44 path as little-endian uint32s with the first
// three components hardened. Legacy instructions expect a leading length byte.
func serializePath(path []uint32, withLength bool) ([]byte, error) {
	if len(path) != hdPathLength {
		return nil, errors.Errorf("invalid derivation path length %d, expected %d", len(path), hdPathLength)
	}

	var out []byte
	if withLength {
		out = append(out, byte(len(path)))
	}
	for i, component := range path {
		if i < 3 {
			component |= hardened
		}
		out = binary.LittleEndian.AppendUint32(out, component)
	}
	return out, nil
}

func command(cla, ins, p1, p2 byte, data []byte) []byte {
	cmd := []byte{cla, ins, p1, p2, byte(len(data))}
	return append(cmd, data...)
}

// splitReply separates the payload from the trailing status word.
func splitReply(reply []byte) ([]byte, uint16, error) {
	if len(reply) < 2 {
		return nil, 0, errors.Errorf("reply too short: %d bytes", len(reply))
	}
	n := len(reply) - 2
	return reply[:n], binary.BigEndian.Uint16(reply[n:]), nil
}
