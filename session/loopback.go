// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package session

import (
	"sync"

	"github.com/mediclaim/mediclaimd/fault"
)

// Loopback - in-process transport wiring several nodes together
//
// used by tests: every "host" is a registered handler in the same
// process, exchanges are synchronous
type Loopback struct {
	sync.RWMutex
	handlers map[string]Handler
}

// NewLoopback - an empty loopback network
func NewLoopback() *Loopback {
	return &Loopback{
		handlers: make(map[string]Handler),
	}
}

// Register - attach a node's handler under its host name
func (l *Loopback) Register(host string, handler Handler) {
	l.Lock()
	l.handlers[host] = handler
	l.Unlock()
}

// Open - a session against a registered handler
func (l *Loopback) Open(host string) (Session, error) {
	l.RLock()
	handler, ok := l.handlers[host]
	l.RUnlock()

	if !ok {
		return nil, fault.SessionSendFailed
	}
	return &loopbackSession{handler: handler}, nil
}

type loopbackSession struct {
	sync.Mutex
	handler Handler
	reply   []byte
	pending bool
}

// Send - run the handler immediately, hold its reply
func (s *loopbackSession) Send(message []byte) error {
	s.Lock()
	defer s.Unlock()

	if s.pending {
		return fault.SessionSendFailed // strict request/reply alternation
	}
	s.reply = s.handler(message)
	s.pending = true
	return nil
}

// Receive - the held reply
func (s *loopbackSession) Receive() ([]byte, error) {
	s.Lock()
	defer s.Unlock()

	if !s.pending {
		return nil, fault.SessionReceiveFailed
	}
	s.pending = false
	return s.reply, nil
}

// Close - nothing to release
func (s *loopbackSession) Close() error {
	return nil
}
