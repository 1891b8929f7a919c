package session

import (
	"bytes"
	"fmt"
	"net/url"
	"unicode"

	"github.com/burntcarrot/loomtext/crdt"
	"github.com/burntcarrot/loomtext/proto"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client is the client side of a session: one connection to a hub, this replica's server-
// assigned site id, and its local buffer table. Grounded on client/main.go's
// readMessages/writeMessages split, generalized from a single implicit chat stream to the full
// protocol message set and from one document to the named buffer table of section 3.
type Client struct {
	conn    Conn
	framer  proto.Framer
	host    Host
	log     *logrus.Logger
	site    uint16
	session string
	buffers *bufferSet

	// inhibit is set while dispatch is folding a remote message into local state, per section 5
	// "Re-entrancy": the host's own mutation in response to one of these calls must not loop
	// back through OnLocalInsert/OnLocalDelete/OnLocalCursor.
	inhibit bool

	lastCursor map[string]crdt.CursorState
}

// Dial opens a websocket connection to host:port and runs the section 4.F authentication
// handshake. On success the returned Client's Site is populated from the server's login message.
func Dial(cfg ClientConfig, host Host, log *logrus.Logger) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Path: "/"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}

	c := &Client{conn: conn, host: host, log: log, buffers: newBufferSet()}
	if err := c.handshake(cfg); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// newClient wraps an already-open Conn, skipping the dial step — used by tests.
func newClient(conn Conn, host Host, log *logrus.Logger) *Client {
	return &Client{conn: conn, host: host, log: log, buffers: newBufferSet()}
}

func (c *Client) handshake(cfg ClientConfig) error {
	c.send(proto.Hello{Name: cfg.DisplayName})

	for {
		msg, err := c.readOne()
		if err != nil {
			return err
		}
		switch m := msg.(type) {
		case proto.Challenge:
			c.send(proto.Hello{Name: cfg.DisplayName, Response: proto.Respond(cfg.Password, m.Salt)})
		case proto.Login:
			c.site, c.session = m.SiteID, m.SessionName
			return nil
		default:
			return fmt.Errorf("%w: unexpected message %T during handshake", proto.ErrBadFrame, msg)
		}
	}
}

func (c *Client) send(m proto.Message) {
	data := []byte(proto.Format(proto.Encode(m)))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil && c.log != nil {
		c.log.WithError(err).Warn("write failed")
	}
}

func (c *Client) readOne() (proto.Message, error) {
	for {
		if msg, ok, err := c.framer.Next(); err != nil {
			return nil, err
		} else if ok {
			return msg, nil
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		c.framer.Feed(data)
	}
}

// requireAuthenticated reports whether the handshake has completed. Site 0 is reserved for the
// hub and is never handed to a client (section 3), so an unauthenticated Client is the only one
// that can still have it.
func (c *Client) requireAuthenticated() error {
	if c.site == 0 {
		return ErrNotAuthenticated
	}
	return nil
}

// Site returns the site id the server assigned at login.
func (c *Client) Site() uint16 { return c.site }

// SessionName returns the session name the server announced at login.
func (c *Client) SessionName() string { return c.session }

// Buffer returns the named local buffer, if the client has synced it.
func (c *Client) Buffer(name string) (*crdt.Buffer, bool) { return c.buffers.get(name) }

// BufferNames lists every buffer this client currently has synced.
func (c *Client) BufferNames() []string { return c.buffers.names() }

// Close closes the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// SetFocus tells the hub (and, through it, every peer) which buffer this site is looking at.
func (c *Client) SetFocus(bufferName string) {
	c.send(proto.Focus{SiteID: c.site, Buffer: bufferName})
}

// Run drains messages from the hub until the connection closes, applying each to local state
// and driving host. Section 4.F "Broadcast rule": a client applies and never forwards.
func (c *Client) Run() error {
	for {
		msg, err := c.readOne()
		if err != nil {
			return err
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg proto.Message) {
	c.inhibit = true
	defer func() { c.inhibit = false }()

	switch m := msg.(type) {
	case proto.Sync:
		c.applySync(m)
	case proto.Desync:
		c.buffers.drop(m.Buffer)
		if c.host != nil {
			c.host.BufferDesynced(m.Buffer)
		}
	case proto.Contact:
		if c.host != nil {
			if m.DisplayName == "" {
				c.host.ContactLeft(m.SiteID)
			} else {
				c.host.ContactJoined(m.SiteID, m.DisplayName, m.Host, m.Port)
			}
		}
	case proto.Focus:
		// No local state to mutate; a host that cares can observe contacts separately.
	default:
		name, ok := bufferNameOf(msg)
		if !ok {
			if c.log != nil {
				c.log.Warnf("unexpected message %T from server", msg)
			}
			return
		}
		buf, ok := c.buffers.get(name)
		if !ok {
			if c.log != nil {
				c.log.Warnf("message for unsynced buffer %q", name)
			}
			return
		}
		if err := applyOp(buf, c.host, name, msg); err != nil && c.log != nil {
			c.log.WithError(err).Warn("applying remote operation")
		}
	}
}

func (c *Client) applySync(m proto.Sync) {
	buf := c.buffers.ensure(m.Buffer, m.MajorMode, c.site)
	pairs := make([]crdt.RunPair, len(m.Runs))
	for i, r := range m.Runs {
		pairs[i] = crdt.RunPair{Length: r.Length, Base: crdt.ID(r.ID), EOB: r.EOB}
	}
	buf.Doc.LoadSnapshot(m.Content, pairs)
	if c.host != nil {
		c.host.BufferSynced(m.Buffer, m.MajorMode, m.Content)
	}
}

// OnLocalInsert derives and publishes the wire effect of a local edit the host has already
// applied to its own view of bufferName (section 6 host boundary, section 4.C). A no-op while a
// remote mutation is in progress (section 5 "Re-entrancy").
func (c *Client) OnLocalInsert(bufferName string, beg int, content string) error {
	if c.inhibit {
		return nil
	}
	if err := c.requireAuthenticated(); err != nil {
		return err
	}
	buf, ok := c.buffers.get(bufferName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBuffer, bufferName)
	}
	ops, err := buf.Doc.LocalInsert(beg, content)
	if err != nil {
		return err
	}
	for _, op := range ops {
		c.send(proto.Insert{Buffer: bufferName, ID: []byte(op.ID), PosHint: op.PosHint, Content: op.Content})
	}
	return nil
}

// OnLocalDelete derives and publishes the wire effect of a local delete of [beg,end) already
// applied to the host's own view of bufferName.
func (c *Client) OnLocalDelete(bufferName string, beg, end int) error {
	if c.inhibit {
		return nil
	}
	if err := c.requireAuthenticated(); err != nil {
		return err
	}
	buf, ok := c.buffers.get(bufferName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBuffer, bufferName)
	}
	op, err := buf.Doc.LocalDelete(beg, end)
	if err != nil {
		return err
	}
	if len(op.Pairs) == 0 {
		return nil
	}
	pairs := make([]proto.DeletePair, len(op.Pairs))
	for i, p := range op.Pairs {
		pairs[i] = proto.DeletePair{Length: p.Length, ID: []byte(p.Base)}
	}
	c.send(proto.Delete{Buffer: bufferName, PosHint: op.PosHint, Pairs: pairs})
	return nil
}

// OnLocalCursor republishes this site's cursor for bufferName if it has moved since the last
// call — section 4.E: "Local cursor is re-published on every post-command tick only when it
// differs from the previous tick."
func (c *Client) OnLocalCursor(bufferName string, point, mark int, hasMark bool) error {
	if c.inhibit {
		return nil
	}
	if err := c.requireAuthenticated(); err != nil {
		return err
	}
	buf, ok := c.buffers.get(bufferName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBuffer, bufferName)
	}

	pointRef := buf.Doc.CursorRefAt(point)
	var markRef *crdt.CursorRef
	if hasMark {
		r := buf.Doc.CursorRefAt(mark)
		markRef = &r
	}
	state := crdt.CursorState{Point: pointRef, Mark: markRef}

	if prev, ok := c.lastCursor[bufferName]; ok && cursorStateEqual(prev, state) {
		return nil
	}
	if c.lastCursor == nil {
		c.lastCursor = make(map[string]crdt.CursorState)
	}
	c.lastCursor[bufferName] = state
	buf.Cursors.Set(c.site, pointRef, markRef)

	markHint, markID := clearCursorHint, []byte(nil)
	if markRef != nil {
		markHint, markID = markRef.Hint, []byte(markRef.ID)
	}
	c.send(proto.Cursor{
		Buffer: bufferName, SiteID: c.site,
		PointHint: pointRef.Hint, PointID: []byte(pointRef.ID),
		MarkHint: markHint, MarkID: markID,
	})
	return nil
}

func cursorStateEqual(a, b crdt.CursorState) bool {
	if a.Point.Hint != b.Point.Hint || !bytes.Equal([]byte(a.Point.ID), []byte(b.Point.ID)) {
		return false
	}
	if (a.Mark == nil) != (b.Mark == nil) {
		return false
	}
	if a.Mark != nil && (a.Mark.Hint != b.Mark.Hint || !bytes.Equal([]byte(a.Mark.ID), []byte(b.Mark.ID))) {
		return false
	}
	return true
}

// CreateOverlay allocates a fresh (site, clock) key, annotates bufferName locally, and
// publishes overlay-add (section 4.E).
func (c *Client) CreateOverlay(bufferName, species string, startPos, endPos int, frontAdvance, rearAdvance bool) (crdt.OverlayKey, error) {
	if err := c.requireAuthenticated(); err != nil {
		return crdt.OverlayKey{}, err
	}
	buf, ok := c.buffers.get(bufferName)
	if !ok {
		return crdt.OverlayKey{}, fmt.Errorf("%w: %q", ErrUnknownBuffer, bufferName)
	}

	key := crdt.OverlayKey{Site: c.site, Clock: buf.NextClock()}
	start, startInside, end, endInside := buf.Doc.OverlayEndpointRefs(startPos, endPos, frontAdvance, rearAdvance)
	buf.Overlays.Add(crdt.Overlay{
		Key: key, Species: species, FrontAdvance: frontAdvance, RearAdvance: rearAdvance,
		Start: start, End: end, StartInside: startInside, EndInside: endInside,
	})

	c.send(proto.OverlayAdd{
		Buffer: bufferName, Site: key.Site, Clock: key.Clock, Species: species,
		FrontAdv: frontAdvance, RearAdv: rearAdvance,
		StartHint: start.Hint, StartID: []byte(start.ID), EndHint: end.Hint, EndID: []byte(end.ID),
		StartInside: startInside, EndInside: endInside,
	})
	return key, nil
}

// MoveOverlay republishes an overlay's endpoints after local growth has shifted them.
func (c *Client) MoveOverlay(bufferName string, key crdt.OverlayKey, startPos, endPos int, frontAdvance, rearAdvance bool) error {
	buf, ok := c.buffers.get(bufferName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBuffer, bufferName)
	}
	start, _, end, _ := buf.Doc.OverlayEndpointRefs(startPos, endPos, frontAdvance, rearAdvance)
	if err := buf.Overlays.Move(key, start, end); err != nil {
		return nil
	}
	c.send(proto.OverlayMove{
		Buffer: bufferName, Site: key.Site, Clock: key.Clock,
		StartHint: start.Hint, StartID: []byte(start.ID), EndHint: end.Hint, EndID: []byte(end.ID),
	})
	return nil
}

// PutOverlayProp replicates a single overlay property. A value that can't be printed is
// silently dropped by the sender (section 4.E).
func (c *Client) PutOverlayProp(bufferName string, key crdt.OverlayKey, prop, value string) error {
	buf, ok := c.buffers.get(bufferName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBuffer, bufferName)
	}
	if !isPrintable(value) {
		return nil
	}
	if err := buf.Overlays.Put(key, prop, value); err != nil {
		return nil
	}
	c.send(proto.OverlayPut{Buffer: bufferName, Site: key.Site, Clock: key.Clock, Prop: prop, Value: value})
	return nil
}

// RemoveOverlay deletes an overlay and publishes overlay-remove.
func (c *Client) RemoveOverlay(bufferName string, key crdt.OverlayKey) error {
	buf, ok := c.buffers.get(bufferName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBuffer, bufferName)
	}
	buf.Overlays.Remove(key)
	c.send(proto.OverlayRemove{Buffer: bufferName, Site: key.Site, Clock: key.Clock})
	return nil
}

func isPrintable(s string) bool {
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
