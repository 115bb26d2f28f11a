// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpc - TLS JSON-RPC surface of a running instance
//
// exposes the read views, dispatch, and the prediction queries; the
// mutating upgrade protocol is deliberately not reachable over RPC -
// manifests are submitted by the operator tooling with direct access
package rpc

import (
	"crypto/tls"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"strings"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/routemark-network/routemarkd/counter"
	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/registry"
	"github.com/routemark-network/routemarkd/routing"
)

// Configuration - configuration file data for RPC setup
type Configuration struct {
	MaximumConnections uint64   `gluamapper:"maximum_connections" json:"maximum_connections"`
	Listen             []string `gluamapper:"listen" json:"listen"`
	Certificate        string   `gluamapper:"certificate" json:"certificate"`
	PrivateKey         string   `gluamapper:"private_key" json:"private_key"`
}

// globals
type rpcData struct {
	sync.RWMutex

	log       *logger.L
	listeners []net.Listener

	// clients connected right now
	connections counter.Counter

	// set once during initialise
	initialised bool
}

// global data
var globalData rpcData

// Initialise - start serving the RPC surface
func Initialise(configuration *Configuration, version string, table *routing.Table, reg *registry.Registry) error {
	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	log := logger.New("rpc")
	globalData.log = log
	log.Info("starting…")

	if 0 == len(configuration.Listen) {
		log.Error("missing listen addresses")
		return fault.ErrMissingParameters
	}
	if configuration.MaximumConnections < 1 {
		log.Errorf("invalid maximum connection limit: %d", configuration.MaximumConnections)
		return fault.ErrMissingParameters
	}

	tlsConfiguration, fingerprint, err := loadCertificate(log, configuration.Certificate, configuration.PrivateKey)
	if nil != err {
		return err
	}
	log.Infof("certificate SHA3-256 fingerprint: %x", fingerprint)

	server := createServer(log, version, table, reg, &globalData.connections)

	for _, listen := range configuration.Listen {
		if '*' == listen[0] {
			// change "*:PORT" to "[::]:PORT"
			// on the assumption that this will listen on tcp4 and tcp6
			listen = "[::]" + ":" + strings.Split(listen, ":")[1]
		}
		log.Infof("starting RPC server: %s", listen)
		l, err := tls.Listen("tcp", listen, tlsConfiguration)
		if nil != err {
			log.Errorf("rpc server listen: %q  error: %s", listen, err)
			return err
		}
		globalData.listeners = append(globalData.listeners, l)
		go serveConnections(l, server, configuration.MaximumConnections, log, &globalData.connections)
	}

	// all data initialised
	globalData.initialised = true
	return nil
}

// Finalise - stop accepting RPC connections
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	for _, l := range globalData.listeners {
		l.Close()
	}
	globalData.listeners = nil

	globalData.initialised = false
	globalData.log.Info("finished")
	globalData.log.Flush()
	return nil
}

// ConnectionCount - clients connected right now
func ConnectionCount() uint64 {
	return globalData.connections.Uint64()
}

func serveConnections(listen net.Listener, server *rpc.Server, maximumConnections uint64, log *logger.L, connections *counter.Counter) {
	for {
		conn, err := listen.Accept()
		if nil != err {
			log.Errorf("rpc server terminated: accept error: %s", err)
			break
		}
		if connections.Increment() <= maximumConnections {
			go func() {
				server.ServeCodec(jsonrpc.NewServerCodec(conn))
				conn.Close()
				connections.Decrement()
			}()
		} else {
			connections.Decrement()
			conn.Close()
		}
	}
	listen.Close()
}

// createServer - register all services
func createServer(log *logger.L, version string, table *routing.Table, reg *registry.Registry, connections *counter.Counter) *rpc.Server {
	start := time.Now().UTC()

	server := rpc.NewServer()
	server.Register(newNode(log, version, start, table, connections))
	server.Register(newTable(log, table))
	server.Register(newRegistry(log, reg))
	return server
}
