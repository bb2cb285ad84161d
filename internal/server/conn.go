package server

import (
	"net"
	"sync"

	"github.com/Nakonechnik/SeaBattle/internal/model"
	"github.com/Nakonechnik/SeaBattle/internal/protocol"
)

// Conn wraps one client TCP connection. Writes are serialized with a
// lock because direct replies, broadcasts, opponent notifications and
// timeout notices can all target the same socket concurrently.
type Conn struct {
	id      model.ConnectionID
	netConn net.Conn

	writeMu sync.Mutex

	mu       sync.Mutex
	playerID model.PlayerID
}

func newConn(id model.ConnectionID, netConn net.Conn) *Conn {
	return &Conn{id: id, netConn: netConn}
}

// ID returns the transport connection id
func (c *Conn) ID() model.ConnectionID {
	return c.id
}

// PlayerID returns the bound player id, empty before Connect succeeds
func (c *Conn) PlayerID() model.PlayerID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID
}

// BindPlayer associates the connection with a player identity
func (c *Conn) BindPlayer(playerID model.PlayerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// Send frames and writes one message. Safe for concurrent use.
func (c *Conn) Send(msg *protocol.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return protocol.WriteMessage(c.netConn, msg)
}

// Close tears down the transport
func (c *Conn) Close() error {
	return c.netConn.Close()
}

// RemoteAddr reports the peer address, for logging
func (c *Conn) RemoteAddr() string {
	return c.netConn.RemoteAddr().String()
}
