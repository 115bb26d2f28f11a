// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package publish

import (
	"encoding/json"

	"github.com/bitmark-inc/logger"
	zmq "github.com/pebbe/zmq4"

	"github.com/routemark-network/routemarkd/messagebus"
)

// socket send queue depth
const sendHighWaterMark = 1000

type broadcaster struct {
	log    *logger.L
	socket *zmq.Socket
}

// bind the PUB socket to all broadcast addresses
func (b *broadcaster) initialise(addresses []string) error {
	b.log = logger.New("broadcaster")

	socket, err := zmq.NewSocket(zmq.PUB)
	if nil != err {
		return err
	}
	socket.SetLinger(0)
	socket.SetSndhwm(sendHighWaterMark)

	for _, address := range addresses {
		b.log.Infof("bind to: %q", address)
		if err := socket.Bind(address); nil != err {
			b.log.Errorf("bind to: %q  error: %s", address, err)
			socket.Close()
			return err
		}
	}

	b.socket = socket
	return nil
}

// Run - republish queued events until shutdown
func (b *broadcaster) Run(args interface{}, shutdown <-chan struct{}) {

	b.log.Info("started")

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case message := <-messagebus.Chan():
			buffer, err := json.Marshal(message.Item)
			if nil != err {
				b.log.Errorf("topic: %q  marshal error: %s", message.Topic, err)
				continue loop
			}
			b.log.Debugf("publish: %q %s", message.Topic, buffer)
			if _, err := b.socket.SendMessage(message.Topic, buffer); nil != err {
				b.log.Errorf("topic: %q  send error: %s", message.Topic, err)
			}
		}
	}

	b.socket.Close()
	b.log.Info("stopped")
}
