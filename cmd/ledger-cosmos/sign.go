// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var signCmd = &cobra.Command{
	Use:   "sign <hex | @file>",
	Short: "Sign a message, usually the JSON sign bytes of a transaction",
	Long: `Sign asks the device to sign a message with the key at m/44'/118'/0'/0/0.

The message is either hex encoded on the command line or read verbatim from
a file given as @path. The DER encoded signature is printed in hex.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message, err := readMessage(args[0])
		if err != nil {
			return err
		}

		session, _, err := connectSession(cmd)
		if err != nil {
			return err
		}
		defer session.Reset()

		stop := startSpinner(cmd.ErrOrStderr(), "Review and approve the transaction on your Ledger...")
		signature, err := session.Sign(message)
		stop()
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(signature))
		return nil
	},
}

func readMessage(arg string) ([]byte, error) {
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		message, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read message")
		}
		return message, nil
	}

	message, err := hex.DecodeString(strings.TrimPrefix(arg, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "decode hex message")
	}
	return message, nil
}

func init() {
	rootCmd.AddCommand(signCmd)
}
