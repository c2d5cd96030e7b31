// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_cosmos

import "fmt"

// Response is the result of a single round-trip to the Cosmos app. Failures
// are reported in-band through ErrorMessage; MsgNoErrors means success.
type Response struct {
	ReturnCode   uint16
	ErrorMessage string

	// version
	Major        uint8
	Minor        uint8
	Patch        uint8
	TestMode     bool
	DeviceLocked bool

	// app info
	AppName    string
	AppVersion string

	// keys and signatures
	Bech32Address string
	CompressedPK  []byte
	Signature     []byte
}

// VersionString formats the reported app version as major.minor.patch.
func (r *Response) VersionString() string {
	return fmt.Sprintf("%d.%d.%d", r.Major, r.Minor, r.Patch)
}

func errorResponse(msg string) *Response {
	return &Response{ErrorMessage: msg}
}
