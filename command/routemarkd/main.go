// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
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

	"github.com/routemark-network/routemarkd/access"
	"github.com/routemark-network/routemarkd/identity"
	"github.com/routemark-network/routemarkd/publish"
	"github.com/routemark-network/routemarkd/registry"
	"github.com/routemark-network/routemarkd/routing"
	"github.com/routemark-network/routemarkd/rpc"
	"github.com/routemark-network/routemarkd/storage"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration and
	// process data needed for initial setup
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// general info
	log.Infof("database: %q", theConfiguration.Database)

	// connection info
	log.Debugf("%s = %#v", "ClientRPC", theConfiguration.ClientRPC)
	log.Debugf("%s = %#v", "Publishing", theConfiguration.Publishing)

	// start the data storage
	log.Info("initialise storage")
	err = storage.Initialise(theConfiguration.Database.Name)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer storage.Finalise()

	// the registry identity all deployment addresses derive from
	registryIdentity, err := identity.FromString(theConfiguration.Identity)
	if nil != err {
		log.Criticalf("invalid identity: %q  error: %s", theConfiguration.Identity, err)
		exitwithstatus.Message("invalid identity: %q  error: %s", theConfiguration.Identity, err)
	}
	log.Infof("identity: %s", registryIdentity)
	log.Infof("registry address: %s", registryIdentity.Address())

	// role table from the configured assignments
	grants := access.NewGrants()
	for i, assignment := range theConfiguration.Roles {
		holder, err := identity.FromString(assignment.Identity)
		if nil != err {
			log.Criticalf("roles[%d]: invalid identity: %q  error: %s", i, assignment.Identity, err)
			exitwithstatus.Message("roles[%d]: invalid identity: %q  error: %s", i, assignment.Identity, err)
		}
		for _, name := range assignment.Roles {
			role, err := access.RoleFromString(name)
			if nil != err {
				log.Criticalf("roles[%d]: error: %s", i, err)
				exitwithstatus.Message("roles[%d]: error: %s", i, err)
			}
			grants.Grant(holder, role)
			log.Infof("grant: %s to: %s", role, holder)
		}
	}

	// deployment registry
	log.Info("initialise registry")
	reg := registry.New(
		registryIdentity.Address(),
		grants,
		theConfiguration.Fees,
		storage.Pool.Chunks,
		storage.Pool.Deployments,
		storage.Pool.FeeLedger,
	)

	// routing table - reloads any persisted manifest state
	log.Info("initialise routing")
	activationDelay := time.Duration(theConfiguration.ActivationDelay) * time.Second
	table, err := routing.New(
		grants,
		reg,
		activationDelay,
		storage.Pool.ManifestState,
		storage.Pool.ConsumedRoots,
		storage.Pool.Routes,
		storage.Pool.HandlerIndex,
		storage.Pool.StagedRoutes,
	)
	if nil != err {
		log.Criticalf("routing initialise error: %s", err)
		exitwithstatus.Message("routing initialise error: %s", err)
	}

	// start up the event publishing background processes
	err = publish.Initialise(&theConfiguration.Publishing)
	if nil != err {
		log.Criticalf("publish initialise error: %s", err)
		exitwithstatus.Message("publish initialise error: %s", err)
	}
	defer publish.Finalise()

	// start up the rpc listeners
	err = rpc.Initialise(&theConfiguration.ClientRPC, version, table, reg)
	if nil != err {
		log.Criticalf("rpc initialise error: %s", err)
		exitwithstatus.Message("rpc initialise error: %s", err)
	}
	defer rpc.Finalise()

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
}
