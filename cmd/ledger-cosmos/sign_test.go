// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadMessage(t *testing.T) {
	message, err := readMessage("0xdeadbeef")
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, message)

	message, err = readMessage("00ff")
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0xff}, message)

	path := filepath.Join(t.TempDir(), "tx.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"chain_id":"cosmoshub-4"}`), 0o600))
	message, err = readMessage("@" + path)
	require.NoError(t, err)
	require.Equal(t, `{"chain_id":"cosmoshub-4"}`, string(message))
}

func TestReadMessageInvalid(t *testing.T) {
	_, err := readMessage("xyz")
	require.Error(t, err)

	_, err = readMessage("@" + filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	require.Equal(t, "Version: "+VERSION+"\n", out.String())
}
