// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	ledger "github.com/luxfi/ledger-cosmos-go"
)

var (
	configFile      string
	chainID         string
	requiredVersion string
	logLevel        string

	config *ledger.Config
)

var rootCmd = &cobra.Command{
	Use:   "ledger-cosmos",
	Short: "Drive the Cosmos app on a Ledger device",
	Long: `ledger-cosmos talks to a Ledger hardware wallet running the Cosmos app.

It checks that the device is connected and unlocked, that the Cosmos app is
open and recent enough, reads the account address of m/44'/118'/0'/0/0 and
asks the device to sign messages.

Settings can be given as flags, in a config file or as LEDGER_* environment
variables (LEDGER_REQUIRED_APP_VERSION, LEDGER_CHAIN_ID, LEDGER_LOG_LEVEL...).`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, toml or json)")
	flags.StringVar(&chainID, "chain-id", "", "chain id of the network the wallet is connected to")
	flags.StringVar(&requiredVersion, "required-version", "", "Cosmos app version the device must exceed")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if config, err = ledger.LoadConfig(configFile); err != nil {
		return err
	}

	if cmd.Flags().Changed("chain-id") {
		config.ChainID = chainID
	}
	if cmd.Flags().Changed("required-version") {
		config.RequiredAppVersion = requiredVersion
	}
	if cmd.Flags().Changed("log-level") {
		config.LogLevel = logLevel
		ledger.SetLogLevel(logLevel)
	}
	return config.Validate()
}

func newSession() (*ledger.Session, error) {
	var conn ledger.Connection
	if config.ChainID != "" {
		conn = ledger.StaticConnection(config.ChainID)
	}
	return ledger.NewSession(config, ledger.DefaultExternals(), conn)
}

// connectSession runs the full connect workflow, with a spinner while the
// device is being probed.
func connectSession(cmd *cobra.Command) (*ledger.Session, string, error) {
	session, err := newSession()
	if err != nil {
		return nil, "", err
	}

	stop := startSpinner(cmd.ErrOrStderr(), "Connecting to Ledger...")
	address, err := session.Connect()
	stop()
	if err != nil {
		session.Reset()
		return nil, "", err
	}
	return session, address, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
