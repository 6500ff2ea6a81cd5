// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package session

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	zmq "github.com/pebbe/zmq4"
	"golang.org/x/time/rate"

	"github.com/mediclaim/mediclaimd/fault"
)

// requests per second one peer may push at a server
const serverRateLimit = 200

// ZmqTransport - REQ sessions to remote nodes
type ZmqTransport struct {
	timeout time.Duration
}

// NewZmqTransport - transport with a per-operation timeout
//
// zero timeout blocks forever, which no node should ever choose
func NewZmqTransport(timeout time.Duration) (*ZmqTransport, error) {
	if timeout <= 0 {
		return nil, fault.InvalidTimeout
	}
	return &ZmqTransport{timeout: timeout}, nil
}

// Open - connect a fresh REQ socket to a host
func (transport *ZmqTransport) Open(host string) (Session, error) {
	socket, err := zmq.NewSocket(zmq.REQ)
	if nil != err {
		return nil, err
	}

	err = socket.SetSndtimeo(transport.timeout)
	if nil != err {
		goto failure
	}
	err = socket.SetRcvtimeo(transport.timeout)
	if nil != err {
		goto failure
	}
	err = socket.SetLinger(0)
	if nil != err {
		goto failure
	}

	err = socket.Connect("tcp://" + host)
	if nil != err {
		goto failure
	}

	return &zmqSession{socket: socket}, nil

failure:
	_ = socket.Close()
	return nil, err
}

type zmqSession struct {
	sync.Mutex
	socket *zmq.Socket
}

// Send - one request frame
func (s *zmqSession) Send(message []byte) error {
	s.Lock()
	defer s.Unlock()

	_, err := s.socket.SendBytes(message, 0)
	if nil != err {
		return fault.SessionSendFailed
	}
	return nil
}

// Receive - the matching reply frame
func (s *zmqSession) Receive() ([]byte, error) {
	s.Lock()
	defer s.Unlock()

	reply, err := s.socket.RecvBytes(0)
	if nil != err {
		return nil, fault.SessionReceiveFailed
	}
	return reply, nil
}

// Close - release the socket
func (s *zmqSession) Close() error {
	s.Lock()
	defer s.Unlock()
	return s.socket.Close()
}

// Server - REP loop answering session requests
type Server struct {
	log      *logger.L
	socket   *zmq.Socket
	handler  Handler
	limiter  *rate.Limiter
	shutdown chan struct{}
	finished chan struct{}
}

// NewServer - bind the listen address and start answering
func NewServer(listen string, handler Handler) (*Server, error) {
	socket, err := zmq.NewSocket(zmq.REP)
	if nil != err {
		return nil, err
	}

	// short receive timeout so shutdown is noticed
	err = socket.SetRcvtimeo(100 * time.Millisecond)
	if nil != err {
		_ = socket.Close()
		return nil, err
	}
	err = socket.SetLinger(0)
	if nil != err {
		_ = socket.Close()
		return nil, err
	}

	err = socket.Bind("tcp://" + listen)
	if nil != err {
		_ = socket.Close()
		return nil, err
	}

	server := &Server{
		log:      logger.New("session"),
		socket:   socket,
		handler:  handler,
		limiter:  rate.NewLimiter(rate.Limit(serverRateLimit), serverRateLimit),
		shutdown: make(chan struct{}),
		finished: make(chan struct{}),
	}
	go server.run()

	server.log.Infof("listening on: %s", listen)
	return server, nil
}

// the answer loop
func (server *Server) run() {
	defer close(server.finished)

loop:
	for {
		select {
		case <-server.shutdown:
			break loop
		default:
		}

		request, err := server.socket.RecvBytes(0)
		if nil != err {
			continue loop // timeout or transient failure
		}

		if err := rateLimit(server.limiter); nil != err {
			server.log.Warn("rate limited")
		}

		reply := server.handler(request)
		_, err = server.socket.SendBytes(reply, 0)
		if nil != err {
			server.log.Errorf("send reply error: %s", err)
		}
	}
	_ = server.socket.Close()
}

// Stop - stop answering and release the socket
func (server *Server) Stop() {
	close(server.shutdown)
	<-server.finished
}
