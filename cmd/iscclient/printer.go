// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"charm.land/lipgloss/v2"

	"github.com/katzenpost/isc/client"
	"github.com/katzenpost/isc/common"
)

const clearScreen = "\033[H\033[2J"

var (
	serverStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C")).Bold(true)
	userStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD"))
	ownStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F1FA8C"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)
	decodedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#BD93F9"))
	statusStyle  = lipgloss.NewStyle().Faint(true)

	tagStyles = []struct {
		tag   string
		style lipgloss.Style
	}{
		{client.TagServer, serverStyle},
		{client.TagUser, userStyle},
		{client.TagYouToServer, ownStyle},
		{client.TagYou, ownStyle},
		{client.TagInfo, infoStyle},
		{client.TagError, errorStyle},
	}
)

// printer renders client events on the terminal.
type printer struct {
	sync.Mutex

	w io.Writer
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: common.NewStyledWriter(w)}
}

func (p *printer) println(s string) {
	p.Lock()
	defer p.Unlock()
	fmt.Fprintln(p.w, s)
}

func (p *printer) notice(s string) {
	p.println(statusStyle.Render(s))
}

func (p *printer) print(e client.Event) {
	switch ev := e.(type) {
	case *client.MessageEvent:
		if ev.Kind == client.KindDecoded {
			p.println(decodedStyle.Render("[decoded] " + ev.Text))
			return
		}
		p.println(renderChat(ev.Text))
	case *client.ConnectionStatusEvent:
		p.notice("* " + ev.String())
	case *client.ClearEvent:
		p.Lock()
		fmt.Fprint(p.w, clearScreen)
		p.Unlock()
	default:
		p.notice(e.String())
	}
}

func renderChat(line string) string {
	for _, ts := range tagStyles {
		if strings.HasPrefix(line, ts.tag) {
			return ts.style.Render(strings.TrimSpace(ts.tag)) + " " + line[len(ts.tag):]
		}
	}
	return line
}
