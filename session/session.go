// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package session - request/reply sessions between participant nodes
//
// a session carries one or more request/reply exchanges of opaque
// byte messages; the coordinator defines the message contents. two
// implementations exist: zmq REQ/REP across hosts and an in-process
// loopback used by tests
package session

// Session - one open conversation with a remote node
type Session interface {
	Send(message []byte) error
	Receive() ([]byte, error)
	Close() error
}

// Transport - session factory, keyed by "address:port" host strings
type Transport interface {
	Open(host string) (Session, error)
}

// Handler - the server side of an exchange: one request in, one
// reply out
type Handler func(request []byte) []byte
