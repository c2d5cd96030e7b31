// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_cosmos

import (
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-version"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Phase is the step a Session is at.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePolling
	PhaseVersionChecking
	PhaseOpenChecking
	PhaseSessionOpen
	PhaseAddressFetching
	PhaseConnected
	PhaseFailed
)

// String returns the phase name used in logs.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePolling:
		return "polling"
	case PhaseVersionChecking:
		return "version-checking"
	case PhaseOpenChecking:
		return "open-checking"
	case PhaseSessionOpen:
		return "session-open"
	case PhaseAddressFetching:
		return "address-fetching"
	case PhaseConnected:
		return "connected"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const deviceNotFoundMessage = "Could not find a connected and unlocked Ledger device"

// Apps from this version on answer the dashboard app-info instruction.
var openAppConstraint = version.MustConstraints(version.NewConstraint(">= 1.5.0"))

// Session drives one Ledger through the connect workflow and keeps the result
// in its State. Operations run one at a time; a failed Session has to be
// Reset before it is used again.
type Session struct {
	ID string

	externals Externals
	config    *Config
	conn      Connection
	required  *version.Version
	state     *State
	log       *zap.SugaredLogger

	devmu   sync.Mutex
	phaseMu sync.RWMutex
	phase   Phase
}

// NewSession creates an idle session. Missing externals fall back to
// DefaultExternals and a nil config to DefaultConfig. conn may be nil when the
// chain is not known yet.
func NewSession(config *Config, externals Externals, conn Connection) (*Session, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	required, err := version.NewVersion(config.RequiredAppVersion)
	if err != nil {
		return nil, errors.Wrap(err, "required app version")
	}

	id := uuid.NewString()
	return &Session{
		ID:        id,
		externals: externals.withDefaults(),
		config:    config,
		conn:      conn,
		required:  required,
		state:     &State{},
		log:       log.With("session", id),
	}, nil
}

// State exposes the observable session state.
func (s *Session) State() *State {
	return s.state
}

// Externals returns the collaborators the session was built with.
func (s *Session) Externals() Externals {
	return s.externals
}

// Phase returns the step the session is at.
func (s *Session) Phase() Phase {
	s.phaseMu.RLock()
	defer s.phaseMu.RUnlock()
	return s.phase
}

func (s *Session) setPhase(phase Phase) {
	s.phaseMu.Lock()
	s.phase = phase
	s.phaseMu.Unlock()
	s.log.Debugw("ledger session phase", "phase", phase)
}

// fail records err for observers and returns it.
func (s *Session) fail(op string, err error) error {
	if err == nil {
		return nil
	}
	s.state.setError(err)
	s.setPhase(PhaseFailed)
	s.log.Warnw("ledger operation failed", "op", op, "kind", KindOf(err), "error", err)
	return err
}

// Poll checks that an unlocked device running a recent enough Cosmos app is
// attached. It uses a short lived channel so a missing device fails fast.
// An open session handle is closed first; call CreateSession or Connect
// afterwards to get one back.
func (s *Session) Poll() error {
	s.devmu.Lock()
	defer s.devmu.Unlock()
	return s.fail("poll", s.poll())
}

func (s *Session) poll() error {
	s.setPhase(PhasePolling)
	s.releaseApp()

	channel, err := s.externals.Transport.CreateChannel(s.config.PollTimeout, true)
	if err != nil {
		return transportError(err)
	}
	app := s.externals.NewApp(channel)
	defer s.closeApp(app)

	resp := app.PublicKey(HDPath)
	if err := CheckLedgerErrorsWithTimeout(resp, deviceNotFoundMessage); err != nil {
		return err
	}

	installed, err := s.fetchVersion(app)
	if err != nil {
		return err
	}
	v, err := version.NewVersion(installed)
	if err != nil {
		return newError(KindProtocol, "Invalid Cosmos app version "+installed)
	}
	if !v.GreaterThan(s.required) {
		return outdatedVersionError(s.config.RequiredAppVersion)
	}

	if openAppConstraint.Check(v) {
		s.setPhase(PhaseOpenChecking)
		return s.checkOpenApp(app)
	}
	return nil
}

func (s *Session) checkOpenApp(app App) error {
	resp := app.AppInfo()
	if err := CheckLedgerErrors(resp); err != nil {
		return err
	}
	if resp.AppName != "Cosmos" {
		return wrongAppError(resp.AppName)
	}
	return nil
}

// CreateSession opens the long lived channel used for everything that needs
// the user to confirm on the device.
func (s *Session) CreateSession() error {
	s.devmu.Lock()
	defer s.devmu.Unlock()
	return s.fail("create-session", s.createSession())
}

func (s *Session) createSession() error {
	s.releaseApp()

	channel, err := s.externals.Transport.CreateChannel(s.config.InteractionTimeout, true)
	if err != nil {
		return transportError(err)
	}
	s.state.setApp(s.externals.NewApp(channel))
	s.setPhase(PhaseSessionOpen)
	return nil
}

// Connect polls the device, opens a session and fetches the address. The
// session is marked connected only when all three succeed.
func (s *Session) Connect() (string, error) {
	s.devmu.Lock()
	defer s.devmu.Unlock()

	if err := s.poll(); err != nil {
		return "", s.fail("connect", err)
	}
	if err := s.createSession(); err != nil {
		return "", s.fail("connect", err)
	}
	address, err := s.fetchAddress()
	if err != nil {
		return "", s.fail("connect", err)
	}

	s.state.setConnected(true)
	s.state.setError(nil)
	s.setPhase(PhaseConnected)
	s.log.Infow("ledger connected", "address", address, "version", s.state.Snapshot().AppVersion)
	return address, nil
}

// FetchVersion reads the Cosmos app version from app, or from the session
// device when app is nil, and stores it as major.minor.patch.
func (s *Session) FetchVersion(app App) (string, error) {
	s.devmu.Lock()
	defer s.devmu.Unlock()

	installed, err := s.fetchVersion(app)
	return installed, s.fail("fetch-version", err)
}

func (s *Session) fetchVersion(app App) (string, error) {
	if app == nil {
		app = s.state.currentApp()
	}
	if app == nil {
		return "", ErrNoSession
	}
	s.setPhase(PhaseVersionChecking)

	resp := app.Version()
	if err := CheckLedgerErrors(resp); err != nil {
		return "", err
	}
	if err := CheckAppMode(s.conn, resp); err != nil {
		return "", err
	}

	installed := resp.VersionString()
	s.state.setAppVersion(installed)
	return installed, nil
}

// FetchAddress reads the compressed public key with the legacy instruction
// and resolves the account address from it.
func (s *Session) FetchAddress() (string, error) {
	s.devmu.Lock()
	defer s.devmu.Unlock()

	address, err := s.fetchAddress()
	return address, s.fail("fetch-address", err)
}

func (s *Session) fetchAddress() (string, error) {
	app := s.state.currentApp()
	if app == nil {
		return "", ErrNoSession
	}
	s.setPhase(PhaseAddressFetching)

	// TODO: switch to AddressAndPubKey for apps >= 1.5.0 once the combined
	// instruction is enabled for wallet users.
	resp := app.PublicKey(HDPath)
	if resp == nil {
		return "", outdatedVersionError(s.config.RequiredAppVersion)
	}
	if err := CheckLedgerErrors(resp); err != nil {
		return "", err
	}

	address := resp.Bech32Address
	if address == "" {
		var err error
		if address, err = s.externals.DeriveAddress(resp.CompressedPK); err != nil {
			return "", newError(KindProtocol, err.Error())
		}
	}
	s.state.setPubKey(resp.CompressedPK)
	return address, nil
}

// ConfirmAddress asks the device for the address and public key again so the
// user can compare them.
func (s *Session) ConfirmAddress() error {
	s.devmu.Lock()
	defer s.devmu.Unlock()

	app := s.state.currentApp()
	if app == nil {
		return s.fail("confirm-address", ErrNoSession)
	}
	return s.fail("confirm-address", CheckLedgerErrors(app.AddressAndPubKey(BECH32Prefix, HDPath)))
}

// ShowAddress displays the address on the device screen.
func (s *Session) ShowAddress() error {
	s.devmu.Lock()
	defer s.devmu.Unlock()

	app := s.state.currentApp()
	if app == nil {
		return s.fail("show-address", ErrNoSession)
	}
	return s.fail("show-address", CheckLedgerErrors(app.ShowAddress(BECH32Prefix, HDPath)))
}

// Sign asks the device to sign message and returns the signature.
func (s *Session) Sign(message []byte) ([]byte, error) {
	s.devmu.Lock()
	defer s.devmu.Unlock()

	app := s.state.currentApp()
	if app == nil {
		return nil, s.fail("sign", ErrNoSession)
	}
	resp := app.Sign(HDPath, message)
	if err := CheckLedgerErrors(resp); err != nil {
		return nil, s.fail("sign", err)
	}
	return resp.Signature, nil
}

// Reset empties the session state and closes the device handle. Externals,
// config and connection are kept.
func (s *Session) Reset() {
	s.devmu.Lock()
	defer s.devmu.Unlock()

	if app := s.state.reset(); app != nil {
		s.closeApp(app)
	}
	s.setPhase(PhaseIdle)
}

// releaseApp closes the session handle, if any, so the transport can hand
// out an exclusive channel again.
func (s *Session) releaseApp() {
	if app := s.state.takeApp(); app != nil {
		s.closeApp(app)
	}
}

func (s *Session) closeApp(app App) {
	if err := app.Close(); err != nil {
		s.log.Debugw("closing ledger channel", "error", err)
	}
}

func transportError(err error) error {
	switch {
	case errors.Is(err, ErrDeviceNotFound), errors.Is(err, ErrTransportTimeout):
		return newError(KindTransport, deviceNotFoundMessage)
	default:
		return newError(KindTransport, err.Error())
	}
}
