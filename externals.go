// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_cosmos

import "time"

var (
	// HDPath is the BIP44 path m/44'/118'/0'/0/0 every session works with.
	HDPath = []uint32{44, 118, 0, 0, 0}
)

const (
	BECH32Prefix = "cosmos"

	// MainnetChainPrefix identifies chain ids of the Cosmos Hub mainnet.
	MainnetChainPrefix = "cosmoshub"

	// InteractionTimeout leaves the user time to approve on the device.
	InteractionTimeout = 60 * time.Second
	// PollTimeout bounds presence detection; lower values always time out.
	PollTimeout = 3 * time.Second
)

// Externals are the collaborators a Session drives. They are kept across
// Reset so tests can swap in fakes.
type Externals struct {
	Transport     TransportProvider
	NewApp        func(device LedgerDevice) App
	DeriveAddress func(compressedPK []byte) (string, error)
}

// DefaultExternals talks to a real device over HID.
func DefaultExternals() Externals {
	return Externals{
		Transport:     NewTransport(NewLedgerAdmin()),
		NewApp:        NewCosmosApp,
		DeriveAddress: CreateCosmosAddress,
	}
}

func (e Externals) withDefaults() Externals {
	if e.Transport == nil {
		e.Transport = NewTransport(NewLedgerAdmin())
	}
	if e.NewApp == nil {
		e.NewApp = NewCosmosApp
	}
	if e.DeriveAddress == nil {
		e.DeriveAddress = CreateCosmosAddress
	}
	return e
}

// Connection is the application's view of the network it talks to.
type Connection interface {
	// ChainID of the last known block header, empty if none was seen yet.
	ChainID() string
}

// StaticConnection is a Connection with a fixed chain id.
type StaticConnection string

func (c StaticConnection) ChainID() string {
	return string(c)
}
