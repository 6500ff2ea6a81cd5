// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package coordinator - drives transitions between participant nodes
//
// each participant runs one Node. a node initiates transitions for the
// accounts it hosts, countersigns proposals from other nodes and
// records finalized transitions into its own store. the engine in the
// transition package decides accept or reject; this package moves the
// data and keeps every participant's store in step
package coordinator

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/mediclaim/mediclaimd/background"
	"github.com/mediclaim/mediclaimd/digest"
	"github.com/mediclaim/mediclaimd/directory"
	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/identity"
	"github.com/mediclaim/mediclaimd/keyring"
	"github.com/mediclaim/mediclaimd/notary"
	"github.com/mediclaim/mediclaimd/record"
	"github.com/mediclaim/mediclaimd/session"
	"github.com/mediclaim/mediclaimd/store"
)

// how long a countersigned proposal may wait for finality
const pendingExpiry = 2 * time.Minute

// how often stale pending transitions are swept
const expirySweepInterval = 15 * time.Second

// Config - everything a node needs to run
type Config struct {
	Name      string            // log identification
	Host      string            // this node's "address:port"
	Store     *store.Store      // record database
	Notary    *notary.Notary    // the consumption authority
	Transport session.Transport // sessions to other nodes
}

// Node - one participant
type Node struct {
	log       *logger.L
	name      string
	host      string
	store     *store.Store
	notary    *notary.Notary
	transport session.Transport
	directory directory.Directory
	keys      *keyring.Keyring

	pendingLock sync.Mutex
	pending     map[digest.Digest]*pendingTransition

	processes *background.T
}

// NewNode - assemble a node and start its housekeeping
func NewNode(config Config) (*Node, error) {
	if "" == config.Host || nil == config.Store || nil == config.Notary || nil == config.Transport {
		return nil, fault.NotInitialised
	}

	node := &Node{
		log:       logger.New("node-" + config.Name),
		name:      config.Name,
		host:      config.Host,
		store:     config.Store,
		notary:    config.Notary,
		transport: config.Transport,
		directory: directory.New(),
		keys:      keyring.New(),
		pending:   make(map[digest.Digest]*pendingTransition),
	}

	node.processes = background.Start([]background.Task{
		node.expirePending,
	})

	node.log.Infof("node started on: %s", config.Host)
	return node, nil
}

// Stop - stop housekeeping
func (node *Node) Stop() {
	node.processes.Stop()
}

// Directory - this node's role directory
func (node *Node) Directory() directory.Directory {
	return node.directory
}

// Store - this node's record database
func (node *Node) Store() *store.Store {
	return node.store
}

// Host - this node's session address
func (node *Node) Host() string {
	return node.host
}

// CreateAndShareAccount - mint a role account, register it locally and
// push the registration to counter-party nodes
//
// the minted identity is the account's long-term registration key; the
// keys inside records are always fresh pseudonyms
func (node *Node) CreateAndShareAccount(role record.Role, hosts []string) (*identity.Identity, error) {
	_, err := node.directory.Resolve(role)
	if nil == err {
		return nil, fault.AccountAlreadyExists
	}

	public, private, err := identity.NewKeyPair()
	if nil != err {
		return nil, err
	}
	_, err = node.keys.Add(private, role)
	if nil != err {
		return nil, err
	}

	entry := directory.Entry{Identity: public, Host: node.host}
	err = node.directory.Register(role, entry)
	if nil != err {
		return nil, err
	}

	for _, host := range hosts {
		err = node.shareAccount(role, entry, host)
		if nil != err {
			return nil, err
		}
	}

	node.log.Infof("account created: %s", role)
	return public, nil
}

// RegisterPatient - take custody of a fresh policy holder key
func (node *Node) RegisterPatient() (*identity.Identity, error) {
	_, private, err := identity.NewKeyPair()
	if nil != err {
		return nil, err
	}
	return node.keys.Custody(private)
}

// ShareAccounts - push every locally hosted directory entry to a host
//
// used at daemon start to catch up peers that were down when the
// accounts were created
func (node *Node) ShareAccounts(host string) error {
	for _, role := range node.directory.Roles() {
		entry, err := node.directory.Resolve(role)
		if nil != err || entry.Host != node.host {
			continue
		}
		err = node.shareAccount(role, entry, host)
		if nil != err {
			return err
		}
	}
	return nil
}

// push one directory entry to a counter-party
func (node *Node) shareAccount(role record.Role, entry directory.Entry, host string) error {
	request := message{kind: shareRequest, role: role, entry: entry}
	reply, err := node.exchange(host, &request)
	if nil != err {
		return err
	}
	if shareAccepted != reply.kind {
		return node.rejected(reply)
	}
	return nil
}

// ask a counter-party to mint an ephemeral key for one of its roles
func (node *Node) requestKey(host string, role record.Role) (*identity.Identity, error) {
	request := message{kind: keyRequest, role: role}
	reply, err := node.exchange(host, &request)
	if nil != err {
		return nil, err
	}
	if keyReply != reply.kind {
		return nil, node.rejected(reply)
	}

	err = node.keys.MapKey(reply.entry.Identity, role)
	if nil != err {
		return nil, err
	}
	return reply.entry.Identity, nil
}

// one request/reply exchange with a remote node
func (node *Node) exchange(host string, request *message) (*message, error) {
	s, err := node.transport.Open(host)
	if nil != err {
		return nil, fault.IncompleteTransition
	}
	defer s.Close()

	err = s.Send(request.pack())
	if nil != err {
		return nil, fault.IncompleteTransition
	}
	replyData, err := s.Receive()
	if nil != err {
		return nil, fault.IncompleteTransition
	}

	reply, err := unpackMessage(replyData)
	if nil != err {
		return nil, fault.UnexpectedPayload
	}
	return reply, nil
}

// surface a refusal from a counter-party
func (node *Node) rejected(reply *message) error {
	if rejection == reply.kind {
		node.log.Warnf("counter-party rejection: %s", reply.reason)
		return fault.SessionRejected
	}
	return fault.UnexpectedPayload
}
