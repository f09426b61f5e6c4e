package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds one outbound write.
	writeWait = 10 * time.Second
	// pongWait is how long a connection may stay silent before the read
	// side gives up on it.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// sendBuffer is the outbound queue per connection. A client that
	// cannot drain it in time is dropped rather than blocking the hub.
	sendBuffer = 32
	// readLimitSlack sits on top of the configured payload cap as the
	// hard transport limit; an oversized message below it is rejected
	// with an ERROR while the connection stays alive.
	readLimitSlack = 4 << 10
)

// client is one authenticated websocket connection. Messages from a
// single connection are handled strictly sequentially by its read pump;
// concurrency between the two sides of a match is resolved by the room
// service locks.
type client struct {
	hub      *Hub
	conn     *websocket.Conn
	playerID string
	name     string
	send     chan []byte
	done     chan struct{}
}

func newClient(h *Hub, conn *websocket.Conn, playerID, name string) *client {
	return &client{
		hub:      h,
		conn:     conn,
		playerID: playerID,
		name:     name,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
	}
}

// enqueue serializes and queues one message for this connection. A full
// queue counts as a dead connection.
func (c *client) enqueue(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.log.Errorf("ws: marshal %T for %s: %v", msg, c.playerID, err)
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	default:
		c.hub.log.Warnf("ws: send queue full, dropping %s", c.playerID)
		c.close()
	}
}

// close makes the pumps wind down. Safe to call more than once through
// the connection close; the done channel is closed exactly once by
// readPump's defer.
func (c *client) close() {
	c.conn.Close()
}

// readPump owns the connection's read side. It dispatches every inbound
// message and triggers the hub's disconnect handling when the connection
// drops for any reason.
func (c *client) readPump() {
	defer func() {
		close(c.done)
		c.conn.Close()
		c.hub.unbind(c)
	}()

	c.conn.SetReadLimit(c.hub.maxPayload + readLimitSlack)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warnf("ws: read from %s: %v", c.playerID, err)
			}
			return
		}
		c.hub.dispatch(c, raw)
	}
}

// writePump owns the connection's write side: queued messages plus
// keepalive pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
