// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/command/routemark-cli/rpccalls"
)

func runRoutes(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	handler, err := address.FromString(c.String("handler"))
	if nil != err {
		return fmt.Errorf("invalid handler address: %q  error: %s", c.String("handler"), err)
	}

	client, err := rpccalls.NewClient(m.connect, m.verbose, m.e)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.GetRoutes(handler)
	if nil != err {
		return err
	}

	printJson(m.w, response)

	return nil
}
