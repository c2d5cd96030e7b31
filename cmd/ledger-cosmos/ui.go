// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// startSpinner shows msg with a spinner and returns a function that clears it.
// Off a terminal the message is printed once.
func startSpinner(out io.Writer, msg string) func() {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		fmt.Fprintln(out, msg)
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(out))
	s.Suffix = " " + msg
	s.Start()
	return func() {
		s.Stop()
	}
}
