// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/merkle"
	"github.com/routemark-network/routemarkd/rpc"
)

// Predict - request the address some content would be staged at
func (client *Client) Predict(content []byte) (*rpc.PredictReply, error) {
	arguments := rpc.PredictArguments{
		Content: content,
	}

	var reply rpc.PredictReply
	if err := client.client.Call("Registry.Predict", arguments, &reply); err != nil {
		return nil, err
	}

	client.printJson("Predict Reply", reply)
	return &reply, nil
}

// PredictAddress - request the address a deterministic deployment would occupy
func (client *Client) PredictAddress(salt address.Salt, codeHash merkle.Digest) (*rpc.PredictAddressReply, error) {
	arguments := rpc.PredictAddressArguments{
		Salt:     salt,
		CodeHash: codeHash,
	}
	client.printJson("PredictAddress Request", arguments)

	var reply rpc.PredictAddressReply
	if err := client.client.Call("Registry.PredictAddress", arguments, &reply); err != nil {
		return nil, err
	}

	client.printJson("PredictAddress Reply", reply)
	return &reply, nil
}

// GetChunk - request the chunk mapping of a content hash
func (client *Client) GetChunk(contentHash merkle.Digest) (*rpc.ChunkReply, error) {
	arguments := rpc.ChunkArguments{
		ContentHash: contentHash,
	}
	client.printJson("Chunk Request", arguments)

	var reply rpc.ChunkReply
	if err := client.client.Call("Registry.Chunk", arguments, &reply); err != nil {
		return nil, err
	}

	client.printJson("Chunk Reply", reply)
	return &reply, nil
}

// GetFees - request the collected fee total
func (client *Client) GetFees() (*rpc.FeesReply, error) {
	var reply rpc.FeesReply
	if err := client.client.Call("Registry.Fees", rpc.FeesArguments{}, &reply); err != nil {
		return nil, err
	}

	client.printJson("Fees Reply", reply)
	return &reply, nil
}
