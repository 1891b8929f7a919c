package session

import (
	"github.com/burntcarrot/loomtext/proto"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// peer is the hub's server-side state for one connected client: its transport, its allocated
// site id, and an outbox drained by a dedicated writer goroutine. Grounded on server/main.go's
// activeClients map[*websocket.Conn]uuid.UUID, generalized to carry the protocol's own site id
// (distinct from the log-correlation uuid, section 2 "Ambient stack") and an outbox so
// broadcasting doesn't block the reader that produced the message.
type peer struct {
	conn        Conn
	connID      uuid.UUID
	site        uint16
	displayName string
	host        string
	port        int
	framer      proto.Framer
	out         chan proto.Message
	done        chan struct{}
}

func newPeer(conn Conn) *peer {
	return &peer{
		conn:   conn,
		connID: uuid.New(),
		out:    make(chan proto.Message, 256),
		done:   make(chan struct{}),
	}
}

// send enqueues m for delivery to this peer, dropping it silently if the peer's writer has
// already exited (the connection is on its way down anyway).
func (p *peer) send(m proto.Message) {
	select {
	case p.out <- m:
	case <-p.done:
	}
}

// writeLoop drains the outbox onto the wire in order until the connection closes. One per peer,
// so a slow or wedged client can't stall the hub's broadcast to everyone else.
func (p *peer) writeLoop() {
	for {
		select {
		case m := <-p.out:
			data := []byte(proto.Format(proto.Encode(m)))
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-p.done:
			return
		}
	}
}

// readOne blocks until one complete message is framed off the connection.
func (p *peer) readOne() (proto.Message, error) {
	for {
		if msg, ok, err := p.framer.Next(); err != nil {
			return nil, err
		} else if ok {
			return msg, nil
		}
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		p.framer.Feed(data)
	}
}
