//go:build !ledger_mock
// +build !ledger_mock

// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package ledger_cosmos

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/zondax/hid"
)

const (
	VendorLedger         = 0x2c97
	UsagePageLedgerNanoS = 0xffa0
	Channel              = 0x0101
	PacketSize           = 64

	defaultExchangeTimeout = 20 * time.Second
)

type LedgerAdminHID struct{}

type LedgerDeviceHID struct {
	device  *hid.Device
	timeout time.Duration

	readCo      sync.Once
	readChannel chan []byte
	closed      chan struct{}
	closeOnce   sync.Once
}

// list of supported product ids as well as their corresponding interfaces
// based on https://github.com/LedgerHQ/ledger-live/blob/develop/libs/ledgerjs/packages/devices/src/index.ts
var supportedLedgerProductID = map[uint8]int{
	0x40: 0, // Ledger Nano X
	0x10: 0, // Ledger Nano S
	0x50: 0, // Ledger Nano S Plus
	0x60: 0, // Ledger Stax
	0x70: 0, // Ledger Flex
}

func NewLedgerAdmin() LedgerAdmin {
	return &LedgerAdminHID{}
}

func ledgerDevices() []hid.DeviceInfo {
	var devices []hid.DeviceInfo
	for _, d := range hid.Enumerate(VendorLedger, 0) {
		if isLedgerDevice(d) {
			devices = append(devices, d)
		}
	}
	return devices
}

func (admin *LedgerAdminHID) ListDevices() ([]string, error) {
	devices := ledgerDevices()
	if len(devices) == 0 {
		log.Debug("No devices. Ledger LOCKED OR Other Program/Web Browser may have control of device.")
	}

	paths := make([]string, 0, len(devices))
	for _, d := range devices {
		logDeviceInfo(d)
		paths = append(paths, d.Path)
	}
	return paths, nil
}

func logDeviceInfo(d hid.DeviceInfo) {
	log.Debugf("============ %s", d.Path)
	log.Debugf("VendorID      : %x", d.VendorID)
	log.Debugf("ProductID     : %x", d.ProductID)
	log.Debugf("Release       : %x", d.Release)
	log.Debugf("Serial        : %x", d.Serial)
	log.Debugf("Manufacturer  : %s", d.Manufacturer)
	log.Debugf("Product       : %s", d.Product)
	log.Debugf("UsagePage     : %x", d.UsagePage)
	log.Debugf("Usage         : %x", d.Usage)
}

func isLedgerDevice(d hid.DeviceInfo) bool {
	if d.VendorID != VendorLedger {
		return false
	}
	if d.UsagePage == UsagePageLedgerNanoS {
		return true
	}

	// Workarounds for possible empty usage pages
	interfaceID, supported := supportedLedgerProductID[uint8(d.ProductID>>8)]
	return supported && interfaceID == d.Interface
}

func (admin *LedgerAdminHID) CountDevices() int {
	return len(ledgerDevices())
}

func (admin *LedgerAdminHID) Connect(deviceIndex int) (LedgerDevice, error) {
	devices := ledgerDevices()
	if deviceIndex < 0 || deviceIndex >= len(devices) {
		return nil, ErrDeviceNotFound
	}

	device, err := devices[deviceIndex].Open()
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", devices[deviceIndex].Path)
	}
	return &LedgerDeviceHID{
		device:      device,
		timeout:     defaultExchangeTimeout,
		readChannel: make(chan []byte, 8),
		closed:      make(chan struct{}),
	}, nil
}

// SetTimeout bounds how long Exchange waits for the device to answer.
func (ledger *LedgerDeviceHID) SetTimeout(timeout time.Duration) {
	ledger.timeout = timeout
}

func (ledger *LedgerDeviceHID) write(buffer []byte) (int, error) {
	totalBytes := len(buffer)
	totalWrittenBytes := 0
	for totalBytes > totalWrittenBytes {
		writtenBytes, err := ledger.device.Write(buffer[totalWrittenBytes:])
		if err != nil {
			return totalWrittenBytes, err
		}
		totalWrittenBytes += writtenBytes
	}
	return totalWrittenBytes, nil
}

func (ledger *LedgerDeviceHID) Read() <-chan []byte {
	ledger.readCo.Do(func() {
		go ledger.readThread()
	})
	return ledger.readChannel
}

func (ledger *LedgerDeviceHID) readThread() {
	defer close(ledger.readChannel)
	for {
		buffer := make([]byte, PacketSize)
		readBytes, err := ledger.device.Read(buffer)
		if err != nil {
			return
		}
		select {
		case ledger.readChannel <- buffer[:readBytes]:
		case <-ledger.closed:
			return
		}
	}
}

func (ledger *LedgerDeviceHID) Exchange(command []byte) ([]byte, error) {
	if len(command) < 5 {
		return nil, errors.New("APDU commands should not be smaller than 5")
	}

	log.Debugf("[HID] => %x", command)

	if err := ledger.sendChunks(command); err != nil {
		return nil, err
	}

	response, err := UnwrapResponseAPDU(Channel, ledger.Read(), PacketSize, ledger.timeout)
	if err != nil {
		return nil, err
	}

	log.Debugf("[HID] <= %x", response)

	if len(response) < 2 {
		return nil, errors.Errorf("response too short: %d bytes", len(response))
	}
	return response, nil
}

func (ledger *LedgerDeviceHID) sendChunks(command []byte) error {
	chunks, err := WrapCommandAPDU(Channel, command, PacketSize)
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		if _, err := ledger.write(chunk); err != nil {
			return errors.Wrap(err, "write to ledger")
		}
	}
	return nil
}

func (ledger *LedgerDeviceHID) Close() error {
	ledger.closeOnce.Do(func() { close(ledger.closed) })
	return ledger.device.Close()
}
