package test

import (
	"sync"

	"github.com/taurusgroup/two-party-rsa/pkg/party"
	"github.com/taurusgroup/two-party-rsa/pkg/protocol"
)

// queueSize bounds the number of undelivered messages per party.
const queueSize = 16

// Network is an in-memory message router between the parties of a protocol.
type Network struct {
	parties          party.IDSlice
	listenChannels   map[party.ID]chan *protocol.Message
	done             chan struct{}
	closedListenChan chan *protocol.Message
	mtx              sync.Mutex
}

func NewNetwork(parties party.IDSlice) *Network {
	closed := make(chan *protocol.Message)
	close(closed)
	c := &Network{
		parties:          parties,
		listenChannels:   make(map[party.ID]chan *protocol.Message, len(parties)),
		closedListenChan: closed,
	}
	return c
}

func (n *Network) init() {
	for _, id := range n.parties {
		n.listenChannels[id] = make(chan *protocol.Message, queueSize)
	}
	n.done = make(chan struct{})
}

// Next returns the channel of messages for id.
func (n *Network) Next(id party.ID) <-chan *protocol.Message {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if n.done == nil {
		n.init()
	}
	c, ok := n.listenChannels[id]
	if !ok {
		return n.closedListenChan
	}
	return c
}

// Send delivers msg to every party it is intended for.
func (n *Network) Send(msg *protocol.Message) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if n.done == nil {
		n.init()
	}
	for id, c := range n.listenChannels {
		if msg.IsFor(id) && c != nil {
			c <- msg
		}
	}
}

// Done marks id as finished, and returns a channel which is closed once every party is finished.
func (n *Network) Done(id party.ID) chan struct{} {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if n.done == nil {
		n.init()
	}
	if _, ok := n.listenChannels[id]; ok {
		close(n.listenChannels[id])
		delete(n.listenChannels, id)
	}
	if len(n.listenChannels) == 0 {
		select {
		case <-n.done:
		default:
			close(n.done)
		}
	}
	return n.done
}
