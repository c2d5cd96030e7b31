// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_cosmos

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type testSession struct {
	*Session
	app       *fakeApp
	transport *fakeTransport
	derived   [][]byte
}

func newTestSession(t *testing.T, required string, conn Connection) *testSession {
	t.Helper()
	SetLogger(zaptest.NewLogger(t))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	ts := &testSession{app: newFakeApp(), transport: &fakeTransport{}}
	config := DefaultConfig()
	if required != "" {
		config.RequiredAppVersion = required
	}

	externals := Externals{
		Transport: ts.transport,
		NewApp:    func(LedgerDevice) App { return ts.app },
		DeriveAddress: func(pk []byte) (string, error) {
			ts.derived = append(ts.derived, pk)
			return "cosmos1derived", nil
		},
	}
	session, err := NewSession(config, externals, conn)
	require.NoError(t, err)
	ts.Session = session
	return ts
}

func TestConnect(t *testing.T) {
	require := require.New(t)
	ts := newTestSession(t, "", nil)
	ts.app.pubKey.Bech32Address = ""

	address, err := ts.Connect()
	require.NoError(err)
	require.Equal("cosmos1derived", address)

	snapshot := ts.State().Snapshot()
	require.True(snapshot.Connected)
	require.Equal(testPubKey, snapshot.PubKey)
	require.Equal("1.5.2", snapshot.AppVersion)
	require.Empty(snapshot.Error)
	require.NotNil(snapshot.App)
	require.Equal(PhaseConnected, ts.Phase())

	require.Equal([]string{"PublicKey", "Version", "AppInfo", "PublicKey"}, ts.app.Calls())
	require.Equal([][]byte{testPubKey}, ts.derived)
	require.Equal(PollTimeout, ts.transport.timeouts[0])
	require.Equal(InteractionTimeout, ts.transport.timeouts[1])
	// the probe handle is released before the session handle is created
	require.Equal(1, ts.app.closed)
}

func TestPollVersionGate(t *testing.T) {
	tests := []struct {
		name     string
		required string
		major    uint8
		minor    uint8
		patch    uint8
		wantErr  string
		calls    []string
	}{
		{
			name: "equal to required", required: "1.0.0", major: 1, minor: 0, patch: 0,
			wantErr: "Outdated version: please update Cosmos app to 1.0.0",
			calls:   []string{"PublicKey", "Version"},
		},
		{
			name: "above required", required: "1.0.0", major: 1, minor: 0, patch: 1,
			calls: []string{"PublicKey", "Version"},
		},
		{
			name: "below required", required: "1.1.0", major: 1, minor: 0, patch: 9,
			wantErr: "Outdated version: please update Cosmos app to 1.1.0",
			calls:   []string{"PublicKey", "Version"},
		},
		{
			name: "open app check", required: "1.0.0", major: 1, minor: 5, patch: 0,
			calls: []string{"PublicKey", "Version", "AppInfo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestSession(t, tt.required, nil)
			ts.app.version.Major, ts.app.version.Minor, ts.app.version.Patch = tt.major, tt.minor, tt.patch

			err := ts.Poll()
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				require.Equal(t, KindVersion, KindOf(err))
				require.Equal(t, tt.wantErr, ts.State().Snapshot().Error)
				require.Equal(t, PhaseFailed, ts.Phase())
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.calls, ts.app.Calls())
		})
	}
}

func TestPollWrongAppOpen(t *testing.T) {
	ts := newTestSession(t, "", nil)
	ts.app.appInfo.AppName = "Bitcoin"

	require.EqualError(t, ts.Poll(), "Close Bitcoin and open the Cosmos app")
}

func TestPollDeviceMissing(t *testing.T) {
	ts := newTestSession(t, "", nil)
	ts.app.pubKey = failed(MsgU2FTimeout)

	err := ts.Poll()
	require.EqualError(t, err, "Could not find a connected and unlocked Ledger device")
	require.Equal(t, KindTransport, KindOf(err))

	ts.Reset()
	ts.transport.err = ErrDeviceNotFound
	require.EqualError(t, ts.Poll(), "Could not find a connected and unlocked Ledger device")
}

func TestPollTestModeOnMainnet(t *testing.T) {
	ts := newTestSession(t, "", StaticConnection("cosmoshub-4"))
	ts.app.version.TestMode = true

	require.ErrorIs(t, ts.Poll(), ErrTestModeOnMainnet)
	require.Empty(t, ts.State().Snapshot().AppVersion)
}

func TestFetchVersion(t *testing.T) {
	ts := newTestSession(t, "", nil)

	_, err := ts.FetchVersion(nil)
	require.ErrorIs(t, err, ErrNoSession)

	app := newFakeApp()
	v, err := ts.FetchVersion(app)
	require.NoError(t, err)
	require.Equal(t, "1.5.2", v)
	require.Equal(t, "1.5.2", ts.State().Snapshot().AppVersion)
}

func TestFetchAddress(t *testing.T) {
	t.Run("bech32 from device", func(t *testing.T) {
		ts := newTestSession(t, "", nil)
		ts.app.pubKey.Bech32Address = "cosmos1fromdevice"
		require.NoError(t, ts.CreateSession())

		address, err := ts.FetchAddress()
		require.NoError(t, err)
		require.Equal(t, "cosmos1fromdevice", address)
		require.Empty(t, ts.derived)
		require.Equal(t, testPubKey, ts.State().Snapshot().PubKey)
	})

	t.Run("derived locally", func(t *testing.T) {
		ts := newTestSession(t, "", nil)
		require.NoError(t, ts.CreateSession())

		address, err := ts.FetchAddress()
		require.NoError(t, err)
		require.Equal(t, "cosmos1derived", address)
		require.Equal(t, [][]byte{testPubKey}, ts.derived)
	})

	t.Run("no response", func(t *testing.T) {
		ts := newTestSession(t, "1.1.0", nil)
		ts.app.pubKey = nil
		require.NoError(t, ts.CreateSession())

		_, err := ts.FetchAddress()
		require.EqualError(t, err, "Outdated version: please update Cosmos app to 1.1.0")
		require.Nil(t, ts.State().Snapshot().PubKey)
	})

	t.Run("device error keeps key unset", func(t *testing.T) {
		ts := newTestSession(t, "", nil)
		ts.app.pubKey = failed(MsgUnknownErrorCode)
		require.NoError(t, ts.CreateSession())

		_, err := ts.FetchAddress()
		require.ErrorIs(t, err, ErrScreensaverMode)
		require.Nil(t, ts.State().Snapshot().PubKey)
	})

	t.Run("without session", func(t *testing.T) {
		ts := newTestSession(t, "", nil)
		_, err := ts.FetchAddress()
		require.ErrorIs(t, err, ErrNoSession)
	})
}

func TestAddressConfirmation(t *testing.T) {
	ts := newTestSession(t, "", nil)
	require.ErrorIs(t, ts.ConfirmAddress(), ErrNoSession)
	require.ErrorIs(t, ts.ShowAddress(), ErrNoSession)

	ts.Reset()
	require.NoError(t, ts.CreateSession())
	require.NoError(t, ts.ConfirmAddress())
	require.NoError(t, ts.ShowAddress())

	ts.app.show = failed(MsgCommandNotAllowed)
	require.ErrorIs(t, ts.ShowAddress(), ErrTransactionRejected)
	require.Equal(t, []string{"AddressAndPubKey", "ShowAddress", "ShowAddress"}, ts.app.Calls())
}

func TestSign(t *testing.T) {
	require := require.New(t)
	ts := newTestSession(t, "", nil)
	_, err := ts.Connect()
	require.NoError(err)

	message := []byte(`{"account_number":"1","chain_id":"cosmoshub-4"}`)
	signature, err := ts.Sign(message)
	require.NoError(err)
	require.Equal(ts.app.sign.Signature, signature)
	require.Equal([][]byte{message}, ts.app.signed)

	ts.app.sign = failed(MsgCommandNotAllowed)
	_, err = ts.Sign(message)
	require.ErrorIs(err, ErrTransactionRejected)
	require.Equal("Transaction rejected", ts.State().Snapshot().Error)
}

func TestResetAfterFailedConnect(t *testing.T) {
	require := require.New(t)
	ts := newTestSession(t, "", nil)
	ts.app.pubKey.Bech32Address = ""
	transport := ts.transport
	ts.externals.DeriveAddress = func([]byte) (string, error) {
		return "", errors.New("bad key")
	}

	_, err := ts.Connect()
	require.EqualError(err, "bad key")

	snapshot := ts.State().Snapshot()
	require.False(snapshot.Connected)
	require.Equal("bad key", snapshot.Error)
	require.NotNil(snapshot.App)
	require.Equal("1.5.2", snapshot.AppVersion)
	require.Nil(snapshot.PubKey)

	ts.Reset()

	snapshot = ts.State().Snapshot()
	require.Equal(Snapshot{}, snapshot)
	require.Equal(PhaseIdle, ts.Phase())
	require.Equal(2, ts.app.closed)

	externals := ts.Externals()
	require.Same(transport, externals.Transport)
	require.NotNil(externals.NewApp)
	require.NotNil(externals.DeriveAddress)
}

func TestNewSessionRejectsBadConfig(t *testing.T) {
	config := DefaultConfig()
	config.RequiredAppVersion = "latest"

	_, err := NewSession(config, Externals{Transport: &fakeTransport{}}, nil)
	require.Error(t, err)
}

func newTransportSession(t *testing.T) (*Session, *fakeApp, *Transport) {
	t.Helper()
	SetLogger(zaptest.NewLogger(t))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	app := newFakeApp()
	transport := NewTransport(&fakeAdmin{count: 1})
	externals := Externals{
		Transport: transport,
		NewApp:    func(device LedgerDevice) App { return channelApp{app, device} },
	}
	session, err := NewSession(DefaultConfig(), externals, nil)
	require.NoError(t, err)
	return session, app, transport
}

func openChannels(transport *Transport) int {
	transport.mu.Lock()
	defer transport.mu.Unlock()
	return transport.open
}

func TestReconnectOverTransport(t *testing.T) {
	require := require.New(t)
	session, _, transport := newTransportSession(t)

	for i := 0; i < 2; i++ {
		address, err := session.Connect()
		require.NoError(err, "connect %d", i)
		require.Equal(testPubKeyAddress, address)
		require.True(session.State().Snapshot().Connected)
		require.Equal(PhaseConnected, session.Phase())
		require.Equal(1, openChannels(transport))
	}

	_, err := session.Sign([]byte("tx"))
	require.NoError(err)
}

func TestPollAfterCreateSession(t *testing.T) {
	require := require.New(t)
	session, app, transport := newTransportSession(t)

	require.NoError(session.CreateSession())
	require.Equal(1, openChannels(transport))

	require.NoError(session.Poll())
	snapshot := session.State().Snapshot()
	require.Nil(snapshot.App)
	require.False(snapshot.Connected)
	require.Empty(snapshot.Error)
	require.Equal(0, openChannels(transport))
	// session handle and probe
	require.Equal(2, app.closed)

	require.NoError(session.CreateSession())
	require.Equal(1, openChannels(transport))
}

func TestConnectAfterFailureClearsState(t *testing.T) {
	require := require.New(t)
	session, app, transport := newTransportSession(t)

	_, err := session.Connect()
	require.NoError(err)

	app.version = failed(MsgAppNotOpen)
	_, err = session.Connect()
	require.ErrorIs(err, ErrAppNotOpen)
	snapshot := session.State().Snapshot()
	require.False(snapshot.Connected)
	require.Nil(snapshot.App)
	require.Equal(PhaseFailed, session.Phase())
	require.Equal(0, openChannels(transport))

	session.Reset()
	app.version = newFakeApp().version
	_, err = session.Connect()
	require.NoError(err)
	snapshot = session.State().Snapshot()
	require.True(snapshot.Connected)
	require.Empty(snapshot.Error)

	session.Reset()
	require.Equal(0, openChannels(transport))
}
