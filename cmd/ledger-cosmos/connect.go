// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to the device and print the account address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, address, err := connectSession(cmd)
		if err != nil {
			return err
		}
		defer session.Reset()

		snapshot := session.State().Snapshot()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Address:     %s\n", address)
		fmt.Fprintf(out, "Public key:  %s\n", hex.EncodeToString(snapshot.PubKey))
		fmt.Fprintf(out, "App version: %s\n", snapshot.AppVersion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
