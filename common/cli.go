// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package common provides the command line plumbing shared by the ISC tools.
package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"charm.land/lipgloss/v2"
	"github.com/carlmjohnson/versioninfo"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// usageErrorMarkers are substrings of errors caused by bad invocations,
// which are answered with the usage text.
var usageErrorMarkers = []string{
	"flag needs an argument:",
	"unknown flag:",
	"unknown shorthand flag:",
	"unknown command",
	"invalid argument",
	"accepts",
	"arg(s), received",
	"failed to load config file",
	"config file must be specified",
	"Undecoded keys in config file",
	"is invalid",
}

// ExecuteWithFang runs cmd under fang with the version stamp and the error
// handler shared by every ISC tool, exiting non-zero on failure.  The
// command's context is cancelled on SIGINT and SIGTERM.
func ExecuteWithFang(ctx context.Context, cmd *cobra.Command) {
	if err := fang.Execute(
		ctx,
		cmd,
		fang.WithVersion(versioninfo.Short()),
		fang.WithErrorHandler(ErrorHandlerWithUsage(cmd)),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

// ErrorHandlerWithUsage returns a fang error handler printing the error,
// followed by the usage text when the command line itself was wrong.
func ErrorHandlerWithUsage(cmd *cobra.Command) fang.ErrorHandler {
	return func(w io.Writer, styles fang.Styles, err error) {
		_, _ = fmt.Fprintln(w, styles.ErrorHeader.String())
		_, _ = fmt.Fprintln(w, styles.ErrorText.Render(err.Error()+"."))
		_, _ = fmt.Fprintln(w)

		if !isUsageError(err) {
			_, _ = fmt.Fprintln(w, lipgloss.JoinHorizontal(
				lipgloss.Left,
				styles.ErrorText.UnsetWidth().Render("Try"),
				styles.Program.Flag.Render("--help"),
				styles.ErrorText.UnsetWidth().UnsetMargins().UnsetTransform().PaddingLeft(1).Render("for usage."),
			))
			_, _ = fmt.Fprintln(w)
			return
		}
		if helpFunc := cmd.HelpFunc(); helpFunc != nil {
			cmd.SetOut(NewStyledWriter(w))
			helpFunc(cmd, []string{})
		}
	}
}

func isUsageError(err error) bool {
	s := err.Error()
	for _, marker := range usageErrorMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// NewStyledWriter wraps w so styled output is downsampled to what the
// terminal behind w supports, or stripped when w is not a terminal.
func NewStyledWriter(w io.Writer) io.Writer {
	return colorprofile.NewWriter(w, os.Environ())
}
