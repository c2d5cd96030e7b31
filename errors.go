// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_cosmos

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorKind groups session failures by what the user has to do about them.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindTransport means the device is absent or did not answer in time.
	KindTransport
	// KindDeviceState means the device is locked, on the wrong app, in test
	// mode on mainnet or the user rejected the request.
	KindDeviceState
	// KindVersion means the installed Cosmos app is too old.
	KindVersion
	// KindProtocol is any other device error, reported verbatim.
	KindProtocol
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindDeviceState:
		return "device-state"
	case KindVersion:
		return "version"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Error is a human-readable session failure.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// DefaultTimeoutMessage replaces a device timeout when the caller gives no
// message of its own.
const DefaultTimeoutMessage = "Connection timed out. Please try again."

var (
	ErrAppNotOpen          = newError(KindDeviceState, "Cosmos app is not open")
	ErrTransactionRejected = newError(KindDeviceState, "Transaction rejected")
	ErrScreensaverMode     = newError(KindDeviceState, "Ledger's screensaver mode is on")
	ErrTestModeOnMainnet   = newError(KindDeviceState, "DANGER: Cosmos app on test mode shouldn't be used on mainnet!")
	ErrNoResponse          = newError(KindProtocol, "Ledger device returned no response")
	ErrNoSession           = newError(KindTransport, "Ledger session has not been created")
)

// KindOf reports the category of err, or KindUnknown for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CheckLedgerErrors translates the device message of resp into a session
// error, using DefaultTimeoutMessage for timeouts.
func CheckLedgerErrors(resp *Response) error {
	return CheckLedgerErrorsWithTimeout(resp, DefaultTimeoutMessage)
}

// CheckLedgerErrorsWithTimeout is CheckLedgerErrors with a custom message for
// timeouts. It returns nil only for MsgNoErrors.
func CheckLedgerErrorsWithTimeout(resp *Response, timeoutMessage string) error {
	if resp == nil || resp.ErrorMessage == "" {
		return ErrNoResponse
	}

	switch resp.ErrorMessage {
	case MsgU2FTimeout:
		if timeoutMessage == "" {
			timeoutMessage = DefaultTimeoutMessage
		}
		return newError(KindTransport, timeoutMessage)
	case MsgAppNotOpen:
		return ErrAppNotOpen
	case MsgCommandNotAllowed:
		return ErrTransactionRejected
	case MsgUnknownErrorCode:
		return ErrScreensaverMode
	case MsgNoErrors:
		return nil
	default:
		return newError(KindProtocol, resp.ErrorMessage)
	}
}

// CheckAppMode rejects a version reply from an app in test mode when the
// connection points at mainnet, and one from a locked device. The test mode
// check takes precedence.
func CheckAppMode(conn Connection, resp *Response) error {
	if resp == nil {
		return nil
	}
	if resp.TestMode && conn != nil && strings.HasPrefix(conn.ChainID(), MainnetChainPrefix) {
		return ErrTestModeOnMainnet
	}
	if resp.DeviceLocked {
		return ErrScreensaverMode
	}
	return nil
}

func outdatedVersionError(required string) error {
	return newError(KindVersion, fmt.Sprintf("Outdated version: please update Cosmos app to %s", required))
}

func wrongAppError(appName string) error {
	return newError(KindDeviceState, fmt.Sprintf("Close %s and open the Cosmos app", appName))
}
