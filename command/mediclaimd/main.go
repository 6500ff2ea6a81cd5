// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/mediclaim/mediclaimd/background"
	"github.com/mediclaim/mediclaimd/configuration"
	"github.com/mediclaim/mediclaimd/coordinator"
	"github.com/mediclaim/mediclaimd/notary"
	"github.com/mediclaim/mediclaimd/record"
	"github.com/mediclaim/mediclaimd/session"
	"github.com/mediclaim/mediclaimd/store"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, _, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		exitwithstatus.Message("%s: version: %s", program, version)
	}

	if len(options["help"]) > 0 {
		exitwithstatus.Message("usage: %s [--help] [--version] --config-file=FILE", program)
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	config, err := configuration.GetConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// start logging
	if err = logger.Initialise(config.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != config.PidFile {
		lockFile, err := os.OpenFile(config.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, config.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(config.PidFile)
	}

	log.Info("initialise store")
	recordStore, err := store.New(config.DatabaseFile())
	if nil != err {
		log.Criticalf("store initialise error: %s", err)
		exitwithstatus.Message("store initialise error: %s", err)
	}
	defer recordStore.Close()

	authority := notary.New(recordStore.ConsumedPool())

	transport, err := session.NewZmqTransport(time.Duration(config.SessionTimeout) * time.Second)
	if nil != err {
		log.Criticalf("transport error: %s", err)
		exitwithstatus.Message("transport error: %s", err)
	}

	log.Info("initialise node")
	node, err := coordinator.NewNode(coordinator.Config{
		Name:      config.NodeName,
		Host:      config.AnnounceAs,
		Store:     recordStore,
		Notary:    authority,
		Transport: transport,
	})
	if nil != err {
		log.Criticalf("node initialise error: %s", err)
		exitwithstatus.Message("node initialise error: %s", err)
	}
	defer node.Stop()

	server, err := session.NewServer(config.Listen, node.Handler)
	if nil != err {
		log.Criticalf("session server error: %s", err)
		exitwithstatus.Message("session server error: %s", err)
	}
	defer server.Stop()

	// create the accounts this node hosts; sharing happens once the
	// peers come up
	for _, name := range config.Roles {
		role, err := record.RoleFromString(name)
		if nil != err {
			log.Criticalf("role %q error: %s", name, err)
			exitwithstatus.Message("role %q error: %s", name, err)
		}
		_, err = node.CreateAndShareAccount(role, nil)
		if nil != err {
			log.Criticalf("account %q error: %s", name, err)
			exitwithstatus.Message("account %q error: %s", name, err)
		}
	}

	processes := background.Start([]background.Task{
		catchUpPeers(log, node, config.Peers),
	})
	defer processes.Stop()

	// abort if a signal arrives
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	log.Info("shutting down…")
}

// keep pushing local account registrations until each peer has them
func catchUpPeers(log *logger.L, node *coordinator.Node, peers []string) background.Task {
	outstanding := make(map[string]bool)
	for _, peer := range peers {
		outstanding[peer] = true
	}

	return func(shutdown <-chan struct{}) {
		for len(outstanding) > 0 {
			select {
			case <-shutdown:
				return
			case <-time.After(10 * time.Second):
				for peer := range outstanding {
					err := node.ShareAccounts(peer)
					if nil != err {
						log.Warnf("share to %s failed: %s", peer, err)
						continue
					}
					log.Infof("accounts shared to: %s", peer)
					delete(outstanding, peer)
				}
			}
		}
	}
}
