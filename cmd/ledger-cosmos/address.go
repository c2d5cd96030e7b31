// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	showOnDevice bool
	confirm      bool
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the account address, optionally verifying it on the device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, address, err := connectSession(cmd)
		if err != nil {
			return err
		}
		defer session.Reset()

		fmt.Fprintln(cmd.OutOrStdout(), address)

		switch {
		case showOnDevice:
			stop := startSpinner(cmd.ErrOrStderr(), "Check the address on your Ledger...")
			err = session.ShowAddress()
			stop()
		case confirm:
			err = session.ConfirmAddress()
		}
		return err
	},
}

func init() {
	addressCmd.Flags().BoolVar(&showOnDevice, "show", false, "display the address on the device screen")
	addressCmd.Flags().BoolVar(&confirm, "confirm", false, "ask the device for the address again")
	addressCmd.MarkFlagsMutuallyExclusive("show", "confirm")
	rootCmd.AddCommand(addressCmd)
}
