// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/routemark-network/routemarkd/command/routemark-cli/rpccalls"
	"github.com/routemark-network/routemarkd/merkle"
)

func runChunk(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	var contentHash merkle.Digest
	if err := contentHash.UnmarshalText([]byte(c.String("hash"))); nil != err {
		return fmt.Errorf("invalid content hash: %q  error: %s", c.String("hash"), err)
	}

	client, err := rpccalls.NewClient(m.connect, m.verbose, m.e)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.GetChunk(contentHash)
	if nil != err {
		return err
	}

	printJson(m.w, response)

	return nil
}
