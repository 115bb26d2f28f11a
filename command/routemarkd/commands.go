// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/exitwithstatus"
	"golang.org/x/crypto/ed25519"

	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/identity"
)

const (
	identityPublicFilename  = "identity.public"
	identityPrivateFilename = "identity.private"

	rpcCertificateFilename = "rpc.crt"
	rpcPrivateKeyFilename  = "rpc.key"
)

// setup command handler
//
// commands that run to create key and certificate files these
// commands cannot access any internal database or states or the
// configuration file
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "gen-identity", "id":
		publicFilename := getFilenameWithDirectory(arguments, identityPublicFilename)
		privateFilename := getFilenameWithDirectory(arguments, identityPrivateFilename)

		err := makeIdentityFiles(publicFilename, privateFilename)
		if nil != err {
			fmt.Printf("generate identity: %q and: %q error: %s\n", publicFilename, privateFilename, err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("generated identity: %q and private key: %q\n", publicFilename, privateFilename)

	case "gen-rpc-cert", "rpc":
		certificateFilename := getFilenameWithDirectory(arguments, rpcCertificateFilename)
		privateKeyFilename := getFilenameWithDirectory(arguments, rpcPrivateKeyFilename)

		addresses := []string{}
		if len(arguments) >= 2 {
			for _, a := range arguments[1:] {
				if "" != a {
					addresses = append(addresses, a)
				}
			}
		}

		err := makeSelfSignedCertificate("rpc", certificateFilename, privateKeyFilename, 0 != len(addresses), addresses)
		if nil != err {
			fmt.Printf("generate RPC key: %q and certificate: %q error: %s\n", privateKeyFilename, certificateFilename, err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("generated RPC key: %q and certificate: %q\n", privateKeyFilename, certificateFilename)

	case "start", "run":
		return false // continue processing

	case "config-test", "cfg", "fingerprint", "f":
		return false // defer processing until configuration is read

	case "version", "v":
		fmt.Printf("%s\n", version)

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n\n", program)

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                       (h)      - display this message\n\n")
		fmt.Printf("  version                    (v)      - display version string\n\n")

		fmt.Printf("  gen-identity [DIR]         (id)     - create the identity in:    %q\n", "DIR/"+identityPublicFilename)
		fmt.Printf("                                        and the private key in:    %q\n", "DIR/"+identityPrivateFilename)
		fmt.Printf("\n")

		fmt.Printf("  gen-rpc-cert [DIR]         (rpc)    - create private key in:     %q\n", "DIR/"+rpcPrivateKeyFilename)
		fmt.Printf("                                        and the certificate in:    %q\n", "DIR/"+rpcCertificateFilename)
		fmt.Printf("\n")

		fmt.Printf("  gen-rpc-cert [DIR] [IPs...]         - as above, adding the IPs to the certificate\n")
		fmt.Printf("\n")

		fmt.Printf("  fingerprint                (f)      - display the certificate fingerprint\n")
		fmt.Printf("\n")

		fmt.Printf("  start                      (run)    - just run the program, same as no arguments\n")
		fmt.Printf("                                        for convenience when passing script arguments\n")
		fmt.Printf("\n")

		fmt.Printf("  config-test                (cfg)    - just check the configuration file\n")
		fmt.Printf("\n")

		exitwithstatus.Exit(1)
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// configuration file enquiry commands
// have configuration file read and decoded, but nothing else
func processConfigCommand(arguments []string, options *Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "fingerprint", "f":
		keypair, err := tls.LoadX509KeyPair(options.ClientRPC.Certificate, options.ClientRPC.PrivateKey)
		if nil != err {
			exitwithstatus.Message("error: cannot load certificate: %q  error: %s", options.ClientRPC.Certificate, err)
		}
		fmt.Printf("rpc fingerprint: %x\n", CertificateFingerprint(keypair.Certificate[0]))

	case "config-test", "cfg":
		b, err := json.Marshal(options)
		if err != nil {
			exitwithstatus.Message("error: %s", err)
		}
		var out bytes.Buffer
		json.Indent(&out, b, "", "  ")
		out.WriteTo(os.Stdout)
		os.Stdout.WriteString("\n")

	default:
		return false
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// create the identity file pair
//
// the public file holds the base58 identity used in role assignments
// and manifest signatures, the private file holds the hex encoded
// ed25519 private key used by the operator tooling
func makeIdentityFiles(publicFilename string, privateFilename string) error {

	if fileExists(publicFilename) || fileExists(privateFilename) {
		return fault.ErrKeyFileAlreadyExists
	}

	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if nil != err {
		return err
	}

	private := "PRIVATE:" + hex.EncodeToString(privateKey) + "\n"
	if err := ioutil.WriteFile(privateFilename, []byte(private), 0600); nil != err {
		return err
	}

	public := identity.FromPublicKey(publicKey).String() + "\n"
	if err := ioutil.WriteFile(publicFilename, []byte(public), 0644); nil != err {
		os.Remove(privateFilename)
		return err
	}

	return nil
}

// get the working directory; if not set in the arguments
// it's set to the current directory
func getFilenameWithDirectory(arguments []string, name string) string {
	dir := "."
	if len(arguments) >= 1 {
		dir = arguments[0]
	}

	return filepath.Join(dir, name)
}
