// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io/ioutil"

	"github.com/urfave/cli"

	"github.com/routemark-network/routemarkd/command/routemark-cli/rpccalls"
)

func runPredict(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	fileName := c.String("file")
	if "" == fileName {
		return fmt.Errorf("missing file argument")
	}

	content, err := ioutil.ReadFile(fileName)
	if nil != err {
		return fmt.Errorf("cannot read content file: %q  error: %s", fileName, err)
	}

	client, err := rpccalls.NewClient(m.connect, m.verbose, m.e)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Predict(content)
	if nil != err {
		return err
	}

	printJson(m.w, response)

	return nil
}
