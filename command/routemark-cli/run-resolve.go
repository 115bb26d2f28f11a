// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/routemark-network/routemarkd/command/routemark-cli/rpccalls"
	"github.com/routemark-network/routemarkd/route"
)

func runResolve(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	key, err := route.KeyFromString(c.String("key"))
	if nil != err {
		return fmt.Errorf("invalid route key: %q  error: %s", c.String("key"), err)
	}

	client, err := rpccalls.NewClient(m.connect, m.verbose, m.e)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Resolve(key)
	if nil != err {
		return err
	}

	printJson(m.w, response)

	return nil
}
