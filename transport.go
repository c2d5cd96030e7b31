// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_cosmos

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

const defaultEnumerateInterval = 100 * time.Millisecond

// timeoutSetter is implemented by devices whose exchange timeout can be tuned per channel.
type timeoutSetter interface {
	SetTimeout(timeout time.Duration)
}

// Transport is a TransportProvider backed by a LedgerAdmin. It waits for a
// device to be enumerated, opens the first one and tracks open channels so an
// exclusive channel is never shared.
type Transport struct {
	admin    LedgerAdmin
	interval time.Duration

	mu        sync.Mutex
	open      int
	exclusive bool
}

var _ TransportProvider = (*Transport)(nil)

func NewTransport(admin LedgerAdmin) *Transport {
	return &Transport{admin: admin, interval: defaultEnumerateInterval}
}

func (t *Transport) CreateChannel(timeout time.Duration, exclusive bool) (LedgerDevice, error) {
	if timeout <= 0 {
		return nil, errors.Errorf("invalid channel timeout %s", timeout)
	}
	if err := t.acquire(exclusive); err != nil {
		return nil, err
	}

	device, err := t.connect(timeout)
	if err != nil {
		t.release()
		return nil, err
	}
	if d, ok := device.(timeoutSetter); ok {
		d.SetTimeout(timeout)
	}

	log.Debugf("opened ledger channel (timeout=%s exclusive=%t)", timeout, exclusive)
	return &channel{LedgerDevice: device, release: t.release}, nil
}

func (t *Transport) connect(timeout time.Duration) (LedgerDevice, error) {
	deadline := time.Now().Add(timeout)
	for t.admin.CountDevices() == 0 {
		if time.Now().Add(t.interval).After(deadline) {
			return nil, ErrDeviceNotFound
		}
		time.Sleep(t.interval)
	}

	device, err := t.admin.Connect(0)
	if err != nil {
		return nil, errors.Wrap(err, "could not open ledger device")
	}
	return device, nil
}

func (t *Transport) acquire(exclusive bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.exclusive || (exclusive && t.open > 0) {
		return ErrChannelBusy
	}
	t.open++
	t.exclusive = exclusive
	return nil
}

func (t *Transport) release() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.open > 0 {
		t.open--
	}
	if t.open == 0 {
		t.exclusive = false
	}
}

// channel releases its slot in the Transport exactly once on Close.
type channel struct {
	LedgerDevice
	once    sync.Once
	release func()
}

func (c *channel) Close() error {
	var err error
	c.once.Do(func() {
		err = c.LedgerDevice.Close()
		c.release()
	})
	return err
}
