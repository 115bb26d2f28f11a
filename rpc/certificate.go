// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"crypto/tls"

	"github.com/bitmark-inc/logger"
	"golang.org/x/crypto/sha3"
)

// loadCertificate - load the TLS keypair and compute its fingerprint
//
// the fingerprint is what clients pin:
//
//	openssl x509 -outform DER -in routemarkd-rpc.crt | sha3sum -a 256
func loadCertificate(log *logger.L, certificateFileName string, keyFileName string) (*tls.Config, [32]byte, error) {
	var fingerprint [32]byte

	keyPair, err := tls.LoadX509KeyPair(certificateFileName, keyFileName)
	if nil != err {
		log.Errorf("failed to load keypair: %q %q  error: %s", certificateFileName, keyFileName, err)
		return nil, fingerprint, err
	}

	tlsConfiguration := &tls.Config{
		Certificates: []tls.Certificate{
			keyPair,
		},
	}

	fingerprint = sha3.Sum256(keyPair.Certificate[0])
	return tlsConfiguration, fingerprint, nil
}
