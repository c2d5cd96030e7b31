//go:build ledger_mock
// +build ledger_mock

// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package ledger_cosmos

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// Version and key the emulated Cosmos app reports.
var (
	MockAppVersion = [3]byte{2, 34, 0}
	MockPubKey, _  = hex.DecodeString("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
)

type LedgerAdminMock struct{}

// LedgerDeviceMock answers the Cosmos app instruction set without hardware.
type LedgerDeviceMock struct{}

func NewLedgerAdmin() LedgerAdmin {
	return &LedgerAdminMock{}
}

func (admin *LedgerAdminMock) CountDevices() int {
	return 1
}

func (admin *LedgerAdminMock) ListDevices() ([]string, error) {
	return []string{"mock"}, nil
}

func (admin *LedgerAdminMock) Connect(deviceIndex int) (LedgerDevice, error) {
	if deviceIndex != 0 {
		return nil, ErrDeviceNotFound
	}
	return &LedgerDeviceMock{}, nil
}

func status(sw uint16, payload ...byte) []byte {
	reply := append([]byte(nil), payload...)
	return append(reply, byte(sw>>8), byte(sw))
}

func (ledger *LedgerDeviceMock) Exchange(command []byte) ([]byte, error) {
	if len(command) < 5 {
		return nil, errors.New("APDU commands should not be smaller than 5")
	}
	log.Debugf("[MOCK] => %x", command)

	cla, ins, p1 := command[0], command[1], command[2]
	switch {
	case cla == CLADashboard && ins == INSAppInfo:
		reply := []byte{1, byte(len("Cosmos"))}
		reply = append(reply, "Cosmos"...)
		reply = append(reply, byte(len("2.34.0")))
		reply = append(reply, "2.34.0"...)
		return status(SWOk, reply...), nil
	case cla != CLA:
		return status(SWClaNotSupported), nil
	case ins == INSGetVersion:
		return status(SWOk, 0, MockAppVersion[0], MockAppVersion[1], MockAppVersion[2], 0), nil
	case ins == INSPublicKeySECP256K1:
		return status(SWOk, MockPubKey...), nil
	case ins == INSGetAddrSECP256K1:
		address, err := CreateCosmosAddress(MockPubKey)
		if err != nil {
			return nil, err
		}
		reply := append(append([]byte(nil), MockPubKey...), address...)
		return status(SWOk, reply...), nil
	case ins == INSSignSECP256K1:
		if p1 != PayloadLast {
			return status(SWOk), nil
		}
		// DER encoded (r, s) = (1, 1)
		return status(SWOk, 0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x01), nil
	default:
		return status(SWInsNotSupported), nil
	}
}

func (ledger *LedgerDeviceMock) Close() error {
	return nil
}
