// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/route"
	"github.com/routemark-network/routemarkd/routing"
	"github.com/routemark-network/routemarkd/rpc"
)

// GetStatus - request the manifest state snapshot
func (client *Client) GetStatus() (*routing.Snapshot, error) {
	var reply routing.Snapshot
	if err := client.client.Call("Table.Status", rpc.StatusArguments{}, &reply); err != nil {
		return nil, err
	}

	client.printJson("Status", reply)
	return &reply, nil
}

// Resolve - request the entry bound to a route key
func (client *Client) Resolve(key route.Key) (*rpc.ResolveReply, error) {
	arguments := rpc.ResolveArguments{
		Key: key,
	}
	client.printJson("Resolve Request", arguments)

	var reply rpc.ResolveReply
	if err := client.client.Call("Table.Resolve", arguments, &reply); err != nil {
		return nil, err
	}

	client.printJson("Resolve Reply", reply)
	return &reply, nil
}

// GetHandlers - request the handlers with bound routes
func (client *Client) GetHandlers(count int) (*rpc.HandlersReply, error) {
	arguments := rpc.HandlersArguments{
		Count: count,
	}

	var reply rpc.HandlersReply
	if err := client.client.Call("Table.Handlers", arguments, &reply); err != nil {
		return nil, err
	}

	client.printJson("Handlers Reply", reply)
	return &reply, nil
}

// GetRoutes - request the route keys bound to a handler
func (client *Client) GetRoutes(handler address.Address) (*rpc.RoutesReply, error) {
	arguments := rpc.RoutesArguments{
		Handler: handler,
	}
	client.printJson("Routes Request", arguments)

	var reply rpc.RoutesReply
	if err := client.client.Call("Table.Routes", arguments, &reply); err != nil {
		return nil, err
	}

	client.printJson("Routes Reply", reply)
	return &reply, nil
}

// Dispatch - forward a payload to the handler bound to a route key
func (client *Client) Dispatch(key route.Key, payload []byte) (*rpc.DispatchReply, error) {
	arguments := rpc.DispatchArguments{
		Key:     key,
		Payload: payload,
	}
	client.printJson("Dispatch Request", arguments)

	var reply rpc.DispatchReply
	if err := client.client.Call("Table.Dispatch", arguments, &reply); err != nil {
		return nil, err
	}

	client.printJson("Dispatch Reply", reply)
	return &reply, nil
}
