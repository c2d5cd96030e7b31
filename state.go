// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_cosmos

import "sync"

// State is the observable side of a Session. Only the Session writes to it;
// readers take a Snapshot.
type State struct {
	mu         sync.RWMutex
	err        string
	app        App
	connected  bool
	pubKey     []byte // 33 bytes, compressed
	appVersion string
}

// Snapshot is a point-in-time copy of State. Fields are read together under
// one lock, but a Snapshot taken during Connect may be partially populated.
type Snapshot struct {
	Error      string
	App        App
	Connected  bool
	PubKey     []byte
	AppVersion string
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Error:      s.err,
		App:        s.app,
		Connected:  s.connected,
		PubKey:     append([]byte(nil), s.pubKey...),
		AppVersion: s.appVersion,
	}
}

func (s *State) setApp(app App) {
	s.mu.Lock()
	s.app = app
	s.mu.Unlock()
}

func (s *State) currentApp() App {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.app
}

func (s *State) setAppVersion(version string) {
	s.mu.Lock()
	s.appVersion = version
	s.mu.Unlock()
}

func (s *State) setPubKey(pubKey []byte) {
	s.mu.Lock()
	s.pubKey = append([]byte(nil), pubKey...)
	s.mu.Unlock()
}

func (s *State) setConnected(connected bool) {
	s.mu.Lock()
	s.connected = connected
	s.mu.Unlock()
}

func (s *State) setError(err error) {
	s.mu.Lock()
	if err == nil {
		s.err = ""
	} else {
		s.err = err.Error()
	}
	s.mu.Unlock()
}

// takeApp clears the device handle and the connected flag and hands back
// the handle.
func (s *State) takeApp() App {
	s.mu.Lock()
	defer s.mu.Unlock()

	app := s.app
	s.app = nil
	s.connected = false
	return app
}

// reset empties the state and hands back the device handle it held.
func (s *State) reset() App {
	s.mu.Lock()
	defer s.mu.Unlock()

	app := s.app
	s.err = ""
	s.app = nil
	s.connected = false
	s.pubKey = nil
	s.appVersion = ""
	return app
}
