package session

import (
	"errors"
	"testing"
	"time"

	"github.com/burntcarrot/loomtext/crdt"
)

const recvTimeout = 2 * time.Second

func recvString(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(recvTimeout):
		t.Fatal("timed out waiting for a host callback")
		return ""
	}
}

func recvUint16(t *testing.T, ch <-chan uint16) uint16 {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(recvTimeout):
		t.Fatal("timed out waiting for a host callback")
		return 0
	}
}

// fakeConn is an in-memory Conn used to drive Hub/Client tests without a real websocket.
// newFakeConnPair returns the two ends of one logical connection.
type fakeConn struct {
	in         chan []byte
	out        chan []byte
	closed     chan struct{} // closed when this side closes
	peerClosed chan struct{} // the other side's closed channel, so a blocked read wakes up too
}

func newFakeConnPair() (*fakeConn, *fakeConn) {
	ab := make(chan []byte, 64)
	ba := make(chan []byte, 64)
	aClosed := make(chan struct{})
	bClosed := make(chan struct{})
	a := &fakeConn{in: ba, out: ab, closed: aClosed, peerClosed: bClosed}
	b := &fakeConn{in: ab, out: ba, closed: bClosed, peerClosed: aClosed}
	return a, b
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data, ok := <-c.in:
		if !ok {
			return 0, nil, errors.New("fakeConn: closed")
		}
		return 1, data, nil
	case <-c.closed:
		return 0, nil, errors.New("fakeConn: closed")
	case <-c.peerClosed:
		return 0, nil, errors.New("fakeConn: closed")
	}
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	cp := append([]byte(nil), data...)
	select {
	case c.out <- cp:
		return nil
	case <-c.closed:
		return errors.New("fakeConn: closed")
	case <-c.peerClosed:
		return errors.New("fakeConn: closed")
	}
}

func (c *fakeConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
	return nil
}

// tryReadMessage reads one raw frame off c, or reports false if none arrives within timeout.
func tryReadMessage(c *fakeConn, timeout time.Duration) ([]byte, bool) {
	select {
	case data, ok := <-c.in:
		if !ok {
			return nil, false
		}
		return data, true
	case <-time.After(timeout):
		return nil, false
	}
}

// recordingHost is a Host that reports every callback on a channel, so concurrent tests can
// block on the specific event they care about instead of racing a slice.
type recordingHost struct {
	synced          chan string
	desynced        chan string
	inserted        chan string
	deleted         chan int
	cursorRendered  chan uint16
	clearedCursor   chan uint16
	overlayRendered chan crdt.OverlayKey
	overlayRemoved  chan crdt.OverlayKey
	contactJoined   chan uint16
	contactLeft     chan uint16
}

func newRecordingHost() *recordingHost {
	return &recordingHost{
		synced:          make(chan string, 16),
		desynced:        make(chan string, 16),
		inserted:        make(chan string, 16),
		deleted:         make(chan int, 16),
		cursorRendered:  make(chan uint16, 16),
		clearedCursor:   make(chan uint16, 16),
		overlayRendered: make(chan crdt.OverlayKey, 16),
		overlayRemoved:  make(chan crdt.OverlayKey, 16),
		contactJoined:   make(chan uint16, 16),
		contactLeft:     make(chan uint16, 16),
	}
}

func (h *recordingHost) BufferSynced(buffer, majorMode, content string) { h.synced <- buffer }
func (h *recordingHost) BufferDesynced(buffer string)                  { h.desynced <- buffer }
func (h *recordingHost) ApplyRemoteInsert(buffer string, pos int, content string) {
	h.inserted <- content
}
func (h *recordingHost) ApplyRemoteDelete(buffer string, pos, length int) { h.deleted <- length }
func (h *recordingHost) RenderRemoteCursor(buffer string, site uint16, point, mark int, hasMark bool) {
	h.cursorRendered <- site
}
func (h *recordingHost) ClearCursor(buffer string, site uint16) { h.clearedCursor <- site }
func (h *recordingHost) RenderOverlay(buffer string, key crdt.OverlayKey, start, end int, ov *crdt.Overlay) {
	h.overlayRendered <- key
}
func (h *recordingHost) RemoveOverlay(buffer string, key crdt.OverlayKey) { h.overlayRemoved <- key }
func (h *recordingHost) ContactJoined(site uint16, displayName, host string, port int) {
	h.contactJoined <- site
}
func (h *recordingHost) ContactLeft(site uint16) { h.contactLeft <- site }
