package cli

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/Nakonechnik/SeaBattle/internal/protocol"
)

const defaultWait = 10 * time.Second

// Client is a connection to the game server speaking the framed wire
// protocol. A client holds one identity for the lifetime of the
// connection.
type Client struct {
	conn       net.Conn
	playerID   string
	playerName string
}

// Dial opens a connection to the server
func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close tells the server we are leaving and drops the connection
func (c *Client) Close() error {
	_ = c.Send(protocol.TypeDisconnect, nil)
	return c.conn.Close()
}

// PlayerID returns the id assigned by the server, empty before Connect
func (c *Client) PlayerID() string {
	return c.playerID
}

// PlayerName returns the name used to connect
func (c *Client) PlayerName() string {
	return c.playerName
}

// Send writes one message to the server
func (c *Client) Send(t protocol.MessageType, payload any) error {
	msg, err := protocol.NewMessage(t, c.playerID, payload)
	if err != nil {
		return err
	}
	return protocol.WriteMessage(c.conn, msg)
}

// Recv reads the next message, blocking up to the given timeout. A zero
// timeout blocks indefinitely.
func (c *Client) Recv(timeout time.Duration) (*protocol.Message, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	return protocol.ReadMessage(c.conn)
}

// WaitFor reads messages until one of the wanted type arrives, skipping
// unrelated server pushes. An Error message surfaces as a Go error.
func (c *Client) WaitFor(want protocol.MessageType) (*protocol.Message, error) {
	deadline := time.Now().Add(defaultWait)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("timed out waiting for %s", want)
		}
		msg, err := c.Recv(remaining)
		if err != nil {
			return nil, err
		}
		if msg.Type == want {
			return msg, nil
		}
		if msg.Type == protocol.TypeError {
			var errData protocol.ErrorData
			if err := msg.DecodePayload(&errData); err == nil {
				return nil, errors.New(errData.Message)
			}
			return nil, errors.New("server rejected the request")
		}
	}
}

// Connect registers the given name with the server and records the
// assigned player id.
func (c *Client) Connect(name string) (protocol.ConnectResponseData, error) {
	var resp protocol.ConnectResponseData
	if err := c.Send(protocol.TypeConnect, protocol.ConnectData{PlayerName: name}); err != nil {
		return resp, err
	}
	msg, err := c.WaitFor(protocol.TypeConnectResponse)
	if err != nil {
		return resp, err
	}
	if err := msg.DecodePayload(&resp); err != nil {
		return resp, err
	}
	if !resp.Success {
		return resp, fmt.Errorf("connect rejected: %s", resp.Message)
	}
	c.playerID = resp.PlayerID
	c.playerName = name
	return resp, nil
}
