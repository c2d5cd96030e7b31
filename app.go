// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_cosmos

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
)

// App is a handle on the Cosmos app running on a connected device.
//
// Every call is a blocking round-trip to the device. A nil Response means the
// app gave no answer to the instruction at all.
type App interface {
	PublicKey(path []uint32) *Response
	Version() *Response
	AppInfo() *Response
	AddressAndPubKey(hrp string, path []uint32) *Response
	ShowAddress(hrp string, path []uint32) *Response
	Sign(path []uint32, message []byte) *Response
	Close() error
}

// CosmosApp implements App over the raw APDU exchange of a LedgerDevice.
type CosmosApp struct {
	device LedgerDevice
}

var _ App = (*CosmosApp)(nil)

func NewCosmosApp(device LedgerDevice) App {
	return &CosmosApp{device: device}
}

// exchange sends cmd and returns the payload on success, or a Response
// describing the failure.
func (app *CosmosApp) exchange(cmd []byte) ([]byte, *Response) {
	reply, err := app.device.Exchange(cmd)
	if err != nil {
		if errors.Is(err, ErrTransportTimeout) {
			return nil, errorResponse(MsgU2FTimeout)
		}
		return nil, errorResponse(err.Error())
	}

	payload, sw, err := splitReply(reply)
	if err != nil {
		return nil, errorResponse(err.Error())
	}
	if sw != SWOk {
		return nil, &Response{ReturnCode: sw, ErrorMessage: StatusMessage(sw)}
	}
	return payload, nil
}

func okResponse() *Response {
	return &Response{ReturnCode: SWOk, ErrorMessage: MsgNoErrors}
}

func (app *CosmosApp) Version() *Response {
	payload, failure := app.exchange(command(CLA, INSGetVersion, 0, 0, nil))
	if failure != nil {
		return failure
	}
	if len(payload) < 4 {
		return errorResponse("invalid version reply")
	}

	resp := okResponse()
	resp.TestMode = payload[0] != 0
	resp.Major = payload[1]
	resp.Minor = payload[2]
	resp.Patch = payload[3]
	resp.DeviceLocked = len(payload) > 4 && payload[4] == 1
	return resp
}

// PublicKey uses the legacy instruction, which never asks for confirmation.
func (app *CosmosApp) PublicKey(path []uint32) *Response {
	pathBytes, err := serializePath(path, true)
	if err != nil {
		return errorResponse(err.Error())
	}
	payload, failure := app.exchange(command(CLA, INSPublicKeySECP256K1, 0, 0, pathBytes))
	if failure != nil {
		return failure
	}
	if len(payload) < secp256k1.PubKeyBytesLenCompressed {
		return errorResponse("invalid public key reply")
	}

	resp := okResponse()
	resp.CompressedPK = append([]byte(nil), payload[:secp256k1.PubKeyBytesLenCompressed]...)
	return resp
}

func (app *CosmosApp) AddressAndPubKey(hrp string, path []uint32) *Response {
	return app.address(hrp, path, false)
}

func (app *CosmosApp) ShowAddress(hrp string, path []uint32) *Response {
	return app.address(hrp, path, true)
}

func (app *CosmosApp) address(hrp string, path []uint32, display bool) *Response {
	if len(hrp) == 0 || len(hrp) > 83 {
		return errorResponse("invalid bech32 prefix")
	}
	pathBytes, err := serializePath(path, false)
	if err != nil {
		return errorResponse(err.Error())
	}

	data := append([]byte{byte(len(hrp))}, hrp...)
	data = append(data, pathBytes...)

	var p1 byte
	if display {
		p1 = 1
	}
	payload, failure := app.exchange(command(CLA, INSGetAddrSECP256K1, p1, 0, data))
	if failure != nil {
		return failure
	}
	if len(payload) < secp256k1.PubKeyBytesLenCompressed {
		return errorResponse("invalid address reply")
	}

	resp := okResponse()
	resp.CompressedPK = append([]byte(nil), payload[:secp256k1.PubKeyBytesLenCompressed]...)
	resp.Bech32Address = string(payload[secp256k1.PubKeyBytesLenCompressed:])
	return resp
}

// AppInfo asks the dashboard which app is currently open.
func (app *CosmosApp) AppInfo() *Response {
	payload, failure := app.exchange(command(CLADashboard, INSAppInfo, 0, 0, nil))
	if failure != nil {
		return failure
	}
	if len(payload) < 2 || payload[0] != 1 {
		return errorResponse("response format ID not recognized")
	}

	nameLen := int(payload[1])
	if len(payload) < 3+nameLen {
		return errorResponse("invalid app info reply")
	}
	resp := okResponse()
	resp.AppName = string(payload[2 : 2+nameLen])

	rest := payload[2+nameLen:]
	versionLen := int(rest[0])
	if len(rest) < 1+versionLen {
		return errorResponse("invalid app info reply")
	}
	resp.AppVersion = string(rest[1 : 1+versionLen])
	return resp
}

// Sign sends the path followed by the message in ChunkSize pieces and returns
// the DER signature produced after the last chunk.
func (app *CosmosApp) Sign(path []uint32, message []byte) *Response {
	if len(message) == 0 {
		return errorResponse(MsgEmptyMessage)
	}
	pathBytes, err := serializePath(path, true)
	if err != nil {
		return errorResponse(err.Error())
	}

	chunks := [][]byte{pathBytes}
	for len(message) > 0 {
		n := min(ChunkSize, len(message))
		chunks = append(chunks, message[:n])
		message = message[n:]
	}

	var payload []byte
	for i, chunk := range chunks {
		p1 := byte(PayloadAdd)
		switch {
		case i == 0:
			p1 = PayloadInit
		case i == len(chunks)-1:
			p1 = PayloadLast
		}

		var failure *Response
		payload, failure = app.exchange(command(CLA, INSSignSECP256K1, p1, 0, chunk))
		if failure != nil {
			return failure
		}
	}

	resp := okResponse()
	resp.Signature = payload
	return resp
}

func (app *CosmosApp) Close() error {
	return app.device.Close()
}
