package session

// Conn is the minimal transport surface a session endpoint needs: a message-oriented duplex
// connection. *websocket.Conn satisfies this directly, so the hub and the client use it without
// adapting the real transport; tests drive an in-memory fake instead. Grounded on
// client/main.go's ConnReader/ConnWriter split, generalized into one interface since both the
// hub and the client need to read and write the same connection.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}
