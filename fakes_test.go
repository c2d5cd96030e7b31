// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_cosmos

import (
	"encoding/hex"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// secp256k1 generator point, compressed.
var testPubKey, _ = hex.DecodeString("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")

const testPubKeyAddress = "cosmos1w508d6qejxtdg4y5r3zarvary0c5xw7k6ah60c"

func success() *Response {
	return &Response{ReturnCode: SWOk, ErrorMessage: MsgNoErrors}
}

func failed(msg string) *Response {
	return &Response{ErrorMessage: msg}
}

// fakeApp returns canned responses and records the calls it receives.
type fakeApp struct {
	mu sync.Mutex

	pubKey  *Response
	version *Response
	appInfo *Response
	address *Response
	show    *Response
	sign    *Response

	calls  []string
	signed [][]byte
	closed int
}

func newFakeApp() *fakeApp {
	pubKey := success()
	pubKey.CompressedPK = testPubKey

	version := success()
	version.Major, version.Minor, version.Patch = 1, 5, 2

	appInfo := success()
	appInfo.AppName = "Cosmos"

	address := success()
	address.CompressedPK = testPubKey
	address.Bech32Address = testPubKeyAddress

	sign := success()
	sign.Signature = []byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x01}

	return &fakeApp{
		pubKey:  pubKey,
		version: version,
		appInfo: appInfo,
		address: address,
		show:    success(),
		sign:    sign,
	}
}

func (a *fakeApp) record(call string) {
	a.mu.Lock()
	a.calls = append(a.calls, call)
	a.mu.Unlock()
}

func (a *fakeApp) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func (a *fakeApp) PublicKey(path []uint32) *Response {
	a.record("PublicKey")
	return a.pubKey
}

func (a *fakeApp) Version() *Response {
	a.record("Version")
	return a.version
}

func (a *fakeApp) AppInfo() *Response {
	a.record("AppInfo")
	return a.appInfo
}

func (a *fakeApp) AddressAndPubKey(hrp string, path []uint32) *Response {
	a.record("AddressAndPubKey")
	return a.address
}

func (a *fakeApp) ShowAddress(hrp string, path []uint32) *Response {
	a.record("ShowAddress")
	return a.show
}

func (a *fakeApp) Sign(path []uint32, message []byte) *Response {
	a.record("Sign")
	a.signed = append(a.signed, message)
	return a.sign
}

func (a *fakeApp) Close() error {
	a.closed++
	return nil
}

// fakeTransport hands out placeholder channels and records the timeouts asked for.
type fakeTransport struct {
	err      error
	timeouts []time.Duration
}

func (t *fakeTransport) CreateChannel(timeout time.Duration, exclusive bool) (LedgerDevice, error) {
	t.timeouts = append(t.timeouts, timeout)
	if t.err != nil {
		return nil, t.err
	}
	return &scriptedDevice{}, nil
}

// scriptedDevice replays raw replies in order and records the commands sent.
type scriptedDevice struct {
	replies  [][]byte
	err      error
	commands [][]byte
	closed   bool
}

func (d *scriptedDevice) Exchange(command []byte) ([]byte, error) {
	d.commands = append(d.commands, append([]byte(nil), command...))
	if d.err != nil {
		return nil, d.err
	}
	if len(d.replies) == 0 {
		return nil, errors.New("no scripted reply")
	}
	reply := d.replies[0]
	d.replies = d.replies[1:]
	return reply, nil
}

func (d *scriptedDevice) Close() error {
	d.closed = true
	return nil
}

func deviceReply(sw uint16, payload ...byte) []byte {
	out := append([]byte(nil), payload...)
	return append(out, byte(sw>>8), byte(sw))
}

// channelApp is a fakeApp that owns a real transport channel.
type channelApp struct {
	*fakeApp
	device LedgerDevice
}

func (a channelApp) Close() error {
	a.fakeApp.Close()
	return a.device.Close()
}
