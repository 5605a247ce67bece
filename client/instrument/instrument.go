// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package instrument exposes the client's prometheus metrics.
package instrument

import (
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	framesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isc_frames_received_total",
			Help: "Number of frames received, by type tag",
		},
		[]string{"type"},
	)
	framesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isc_frames_sent_total",
			Help: "Number of frames sent, by type tag",
		},
		[]string{"type"},
	)
	inboxDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "isc_inbox_dropped_frames_total",
			Help: "Number of server frames dropped because the inbox was full",
		},
	)
	tasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isc_tasks_total",
			Help: "Number of finished tasks, by task and outcome",
		},
		[]string{"task", "outcome"},
	)
	connStates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isc_connection_state_changes_total",
			Help: "Number of connection state transitions, by new state",
		},
		[]string{"state"},
	)

	registerOnce sync.Once
)

// Register registers the client metrics with the default registry.  It is
// safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(framesReceived)
		prometheus.MustRegister(framesSent)
		prometheus.MustRegister(inboxDropped)
		prometheus.MustRegister(tasks)
		prometheus.MustRegister(connStates)
	})
}

// Serve registers the metrics and serves /metrics on address until the
// returned server is shut down.  The bound address is returned as well.
func Serve(address string) (*http.Server, string, error) {
	Register()
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, "", err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ln.Close()
		}
	}()
	return srv, ln.Addr().String(), nil
}

// FrameReceived counts one received frame of type tag t.
func FrameReceived(t string) {
	framesReceived.With(prometheus.Labels{"type": t}).Inc()
}

// FrameSent counts one sent frame of type tag t.
func FrameSent(t string) {
	framesSent.With(prometheus.Labels{"type": t}).Inc()
}

// InboxDropped counts one frame dropped by a full inbox.
func InboxDropped() {
	inboxDropped.Inc()
}

// TaskFinished counts a finished task.
func TaskFinished(task, outcome string) {
	tasks.With(prometheus.Labels{"task": task, "outcome": outcome}).Inc()
}

// ConnectionState counts a transition into state.
func ConnectionState(state string) {
	connStates.With(prometheus.Labels{"state": state}).Inc()
}
