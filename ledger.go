// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package ledger_cosmos

import (
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrDeviceNotFound is returned when no Ledger shows up before a channel timeout.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrTransportTimeout is returned when the device does not answer an exchange in time.
	ErrTransportTimeout = errors.New("transport timeout")
	// ErrChannelBusy is returned when an exclusive channel is already open.
	ErrChannelBusy = errors.New("ledger channel is busy")
)

// LedgerAdmin defines the interface for managing Ledger devices.
type LedgerAdmin interface {
	CountDevices() int
	ListDevices() ([]string, error)
	Connect(deviceIndex int) (LedgerDevice, error)
}

// LedgerDevice defines the interface for interacting with a Ledger device.
type LedgerDevice interface {
	Exchange(command []byte) ([]byte, error)
	Close() error
}

// TransportProvider hands out communication channels to a connected Ledger.
// CreateChannel fails if no device is reachable within timeout.
type TransportProvider interface {
	CreateChannel(timeout time.Duration, exclusive bool) (LedgerDevice, error)
}
