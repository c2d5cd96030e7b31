// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package ledger_cosmos

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
)

const (
	tagAPDU          = 0x05
	packetHeaderSize = 5 // channel(2) + tag(1) + sequence(2)
)

// WrapCommandAPDU turns the command into a sequence of HID packets. The first
// packet carries the total command length right after the header.
func WrapCommandAPDU(channel uint16, command []byte, packetSize int) ([][]byte, error) {
	if packetSize <= packetHeaderSize+2 {
		return nil, errors.Errorf("packet size must be larger than %d", packetHeaderSize+2)
	}
	if len(command) > 0xffff {
		return nil, errors.Errorf("command too long: %d bytes", len(command))
	}

	buffer := make([]byte, 2+len(command))
	binary.BigEndian.PutUint16(buffer, uint16(len(command)))
	copy(buffer[2:], command)

	var packets [][]byte
	for seq := uint16(0); len(buffer) > 0; seq++ {
		packet := make([]byte, packetSize)
		binary.BigEndian.PutUint16(packet[0:2], channel)
		packet[2] = tagAPDU
		binary.BigEndian.PutUint16(packet[3:5], seq)

		n := copy(packet[packetHeaderSize:], buffer)
		buffer = buffer[n:]
		packets = append(packets, packet)
	}

	return packets, nil
}

// UnwrapResponseAPDU reassembles a response from the packets delivered on pipe.
// It gives up with ErrTransportTimeout when the whole response has not
// arrived within timeout.
func UnwrapResponseAPDU(channel uint16, pipe <-chan []byte, packetSize int, timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var (
		response []byte
		total    = -1
		seq      uint16
	)
	for total < 0 || len(response) < total {
		var packet []byte
		select {
		case buffer, ok := <-pipe:
			if !ok {
				return nil, errors.New("read channel closed")
			}
			packet = buffer
		case <-timer.C:
			return nil, ErrTransportTimeout
		}

		if len(packet) > packetSize {
			packet = packet[:packetSize]
		}
		if len(packet) < packetHeaderSize {
			return nil, errors.Errorf("packet too short: %d bytes", len(packet))
		}
		if got := binary.BigEndian.Uint16(packet[0:2]); got != channel {
			return nil, errors.Errorf("invalid channel %#04x", got)
		}
		if packet[2] != tagAPDU {
			return nil, errors.Errorf("invalid tag %#02x", packet[2])
		}
		if got := binary.BigEndian.Uint16(packet[3:5]); got != seq {
			return nil, errors.Errorf("invalid sequence %d, expected %d", got, seq)
		}

		data := packet[packetHeaderSize:]
		if seq == 0 {
			if len(data) < 2 {
				return nil, errors.New("first packet is missing the response length")
			}
			total = int(binary.BigEndian.Uint16(data[0:2]))
			data = data[2:]
		}
		response = append(response, data...)
		seq++
	}

	return response[:total], nil
}
