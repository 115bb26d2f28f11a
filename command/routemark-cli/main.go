// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
)

type metadata struct {
	connect string
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	app := cli.NewApp()
	app.Name = "routemark-cli"
	// app.Usage = ""
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "connect, c",
			Value: "",
			Usage: "*routemarkd host/IP and port, `HOST:PORT`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "info",
			Usage:  "display routemarkd status",
			Action: runInfo,
		},
		{
			Name:   "status",
			Usage:  "display the manifest state snapshot",
			Action: runStatus,
		},
		{
			Name:      "resolve",
			Usage:     "display the handler bound to a route key",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "key, k",
					Value: "",
					Usage: "*hex route `KEY`",
				},
			},
			Action: runResolve,
		},
		{
			Name:      "handlers",
			Usage:     "list handlers with bound routes",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "count, n",
					Value: 20,
					Usage: " maximum records to output `COUNT`",
				},
			},
			Action: runHandlers,
		},
		{
			Name:      "routes",
			Usage:     "list the route keys bound to a handler",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "handler, a",
					Value: "",
					Usage: "*handler `ADDRESS`",
				},
			},
			Action: runRoutes,
		},
		{
			Name:      "dispatch",
			Usage:     "forward a payload to the handler bound to a route key",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "key, k",
					Value: "",
					Usage: "*hex route `KEY`",
				},
				cli.StringFlag{
					Name:  "payload, p",
					Value: "",
					Usage: " payload `STRING`",
				},
				cli.StringFlag{
					Name:  "file, f",
					Value: "",
					Usage: " read the payload from `FILE` instead",
				},
			},
			Action: runDispatch,
		},
		{
			Name:      "predict",
			Usage:     "display the address some content would be staged at",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "file, f",
					Value: "",
					Usage: "*`FILE` of content to predict",
				},
			},
			Action: runPredict,
		},
		{
			Name:      "chunk",
			Usage:     "display the chunk mapping of a content hash",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "hash, x",
					Value: "",
					Usage: "*hex content `HASH`",
				},
			},
			Action: runChunk,
		},
		{
			Name:   "fees",
			Usage:  "display the collected fee total",
			Action: runFees,
		},
		{
			Name:  "version",
			Usage: "display routemark-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	// check the connection argument
	app.Before = func(c *cli.Context) error {

		// to suppress checks if certain commands
		command := c.Args().Get(0)
		if "version" == command || "help" == command || "" == command {
			return nil
		}

		connect := c.GlobalString("connect")
		if "" == connect {
			return fmt.Errorf("missing connect argument")
		}

		c.App.Metadata["config"] = &metadata{
			connect: connect,
			verbose: c.GlobalBool("verbose"),
			e:       c.App.ErrWriter,
			w:       c.App.Writer,
		}

		return nil
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}
