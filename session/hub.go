package session

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/burntcarrot/loomtext/crdt"
	"github.com/burntcarrot/loomtext/proto"
	"github.com/fatih/color"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Hub is the server side of a session: the site-ID allocator, the shared buffer table, and
// every connected peer (section 3 "Ownership": "The server exclusively owns the site-ID
// allocator"). Grounded on server/main.go's handleConn/handleMsg pair, generalized from one
// untyped broadcast channel fanning out chat lines to per-peer outboxes carrying typed protocol
// messages, with the authentication handshake and greeting sequence of section 4.F folded in.
type Hub struct {
	mu       sync.Mutex
	cfg      ServerConfig
	log      *logrus.Logger
	sites    *siteAllocator
	buffers  *bufferSet
	peers    map[uint16]*peer
	upgrader websocket.Upgrader
}

// NewHub returns a Hub ready to accept connections for cfg.
func NewHub(cfg ServerConfig, log *logrus.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		log:     log,
		sites:   newSiteAllocator(),
		buffers: newBufferSet(),
		peers:   make(map[uint16]*peer),
	}
}

// ShareBuffer creates (or returns) a server-owned shared buffer. Only a server may share a
// buffer (section 6 "shareBuffer"); there is no corresponding Client method.
func (h *Hub) ShareBuffer(name, majorMode string) *crdt.Buffer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buffers.ensure(name, majorMode, 0)
}

// StopShareBuffer drops a shared buffer and broadcasts desync to every connected peer (section 6
// "stopShareBuffer").
func (h *Hub) StopShareBuffer(name string) {
	h.mu.Lock()
	h.buffers.drop(name)
	peers := h.peerList()
	h.mu.Unlock()

	for _, p := range peers {
		p.send(proto.Desync{Buffer: name})
	}
}

// StopSession disconnects every peer and drops every table (section 6 "stopSession").
func (h *Hub) StopSession() {
	h.mu.Lock()
	peers := h.peerList()
	h.peers = make(map[uint16]*peer)
	h.buffers = newBufferSet()
	h.sites = newSiteAllocator()
	h.mu.Unlock()

	for _, p := range peers {
		close(p.done)
		p.conn.Close()
	}
}

func (h *Hub) peerList() []*peer {
	out := make([]*peer, 0, len(h.peers))
	for _, p := range h.peers {
		out = append(out, p)
	}
	return out
}

// ServeHTTP upgrades an incoming HTTP connection to a websocket and runs its session to
// completion. Grounded directly on server/main.go's handleConn.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	h.Serve(conn)
}

// Serve runs one connection's session loop — handshake, greeting, then reading until it drops.
// Split out from ServeHTTP so tests can drive it with a fake Conn instead of a real websocket.
func (h *Hub) Serve(conn Conn) {
	p := newPeer(conn)
	go p.writeLoop()
	defer func() {
		close(p.done)
		conn.Close()
	}()

	if !h.authenticate(p) {
		return
	}
	if !h.admit(p) {
		return
	}
	defer h.drop(p)

	h.readLoop(p)
}

// authenticate runs the section 4.F handshake: hello, then (if the session has a password) a
// challenge/response round. Returns false (connection should be dropped, no feedback per section
// 7 "Authentication failure") on any protocol or credential failure.
func (h *Hub) authenticate(p *peer) bool {
	msg, err := p.readOne()
	if err != nil {
		return false
	}
	hello, ok := msg.(proto.Hello)
	if !ok {
		h.log.Warn("protocol violation: expected hello")
		return false
	}
	p.displayName = hello.Name

	if h.cfg.Password == "" {
		return true
	}

	challenge, err := proto.NewChallenge()
	if err != nil {
		h.log.WithError(err).Error("generating challenge")
		return false
	}
	p.send(proto.Challenge{Salt: challenge})

	msg, err = p.readOne()
	if err != nil {
		return false
	}
	reply, ok := msg.(proto.Hello)
	if !ok {
		h.log.Warn("protocol violation: expected challenge response")
		return false
	}
	if !proto.Verify(h.cfg.Password, challenge, reply.Response) {
		h.log.WithError(proto.ErrAuthFailed).WithField("name", reply.Name).Warn("dropping connection")
		return false
	}
	p.displayName = reply.Name
	return true
}

// admit allocates a site id, registers the peer, and runs the rest of the section 4.F greeting:
// login, a sync per shared buffer, contact entries for existing peers, cursor/overlay replay,
// then a broadcast announcing the newcomer to everyone else. Returns false (and logs) on site-id
// exhaustion, which section 7 treats as fatal for this connection.
func (h *Hub) admit(p *peer) bool {
	h.mu.Lock()
	site, err := h.sites.allocate()
	if err != nil {
		h.mu.Unlock()
		h.log.WithError(err).Error("refusing connection: site-id space exhausted")
		return false
	}
	p.site = site
	h.peers[site] = p
	names := h.buffers.names()
	others := h.peerList()
	h.mu.Unlock()

	p.send(proto.Login{SiteID: site, SessionName: h.cfg.SessionName})

	if h.cfg.DisplayName != "" {
		p.send(proto.Contact{SiteID: 0, DisplayName: h.cfg.DisplayName})
	}
	for _, name := range names {
		h.sendSync(p, name)
	}
	for _, other := range others {
		if other.site == p.site {
			continue
		}
		p.send(proto.Contact{SiteID: other.site, DisplayName: other.displayName, Host: other.host, Port: other.port})
	}
	for _, name := range names {
		h.replayBufferState(p, name)
	}

	color.Green("%s connected as site %d\n", p.displayName, p.site)
	h.log.WithFields(logrus.Fields{"site": p.site, "name": p.displayName, "conn": p.connID}).Info("peer admitted")

	h.broadcastExcept(p.site, proto.Contact{SiteID: p.site, DisplayName: p.displayName, Host: p.host, Port: p.port})
	return true
}

func (h *Hub) sendSync(p *peer, name string) {
	h.mu.Lock()
	buf, ok := h.buffers.get(name)
	h.mu.Unlock()
	if !ok {
		return
	}

	runs := buf.Doc.Snapshot()
	idRuns := make([]proto.IDRun, len(runs))
	for i, r := range runs {
		idRuns[i] = proto.IDRun{Length: r.Length, ID: []byte(r.Base), EOB: r.EOB}
	}
	p.send(proto.Sync{Buffer: name, MajorMode: buf.MajorMode, Content: buf.Doc.Content(), Runs: idRuns})
}

func (h *Hub) replayBufferState(p *peer, name string) {
	h.mu.Lock()
	buf, ok := h.buffers.get(name)
	h.mu.Unlock()
	if !ok {
		return
	}

	for _, site := range buf.Cursors.Sites() {
		st, ok := buf.Cursors.Get(site)
		if !ok {
			continue
		}
		markHint, markID := clearCursorHint, []byte(nil)
		if st.Mark != nil {
			markHint, markID = st.Mark.Hint, []byte(st.Mark.ID)
		}
		p.send(proto.Cursor{
			Buffer: name, SiteID: site,
			PointHint: st.Point.Hint, PointID: []byte(st.Point.ID),
			MarkHint: markHint, MarkID: markID,
		})
	}

	for _, key := range buf.Overlays.Keys() {
		ov, ok := buf.Overlays.Get(key)
		if !ok {
			continue
		}
		p.send(proto.OverlayAdd{
			Buffer: name, Site: key.Site, Clock: key.Clock, Species: ov.Species,
			FrontAdv: ov.FrontAdvance, RearAdv: ov.RearAdvance,
			StartHint: ov.Start.Hint, StartID: []byte(ov.Start.ID),
			EndHint: ov.End.Hint, EndID: []byte(ov.End.ID),
			StartInside: ov.StartInside, EndInside: ov.EndInside,
		})
		for prop, value := range ov.PList {
			p.send(proto.OverlayPut{Buffer: name, Site: key.Site, Clock: key.Clock, Prop: prop, Value: value})
		}
	}
}

// drop releases site's allocation and synthesizes the disconnect bookkeeping of section 4.F:
// a clear-cursor per buffer and one clear-contact, broadcast to everyone remaining. The peer's
// overlays are left untouched — "their key.site is immutable history."
func (h *Hub) drop(p *peer) {
	h.mu.Lock()
	delete(h.peers, p.site)
	h.sites.release(p.site)
	names := h.buffers.names()
	for _, name := range names {
		if buf, ok := h.buffers.get(name); ok {
			buf.Cursors.Clear(p.site)
		}
	}
	remaining := h.peerList()
	h.mu.Unlock()

	color.Yellow("%s (site %d) disconnected\n", p.displayName, p.site)

	for _, name := range names {
		for _, other := range remaining {
			other.send(proto.Cursor{Buffer: name, SiteID: p.site, PointHint: clearCursorHint, MarkHint: clearCursorHint})
		}
	}
	for _, other := range remaining {
		other.send(proto.Contact{SiteID: p.site, DisplayName: ""})
	}
}

func (h *Hub) readLoop(p *peer) {
	for {
		msg, err := p.readOne()
		if err != nil {
			return
		}
		if err := h.handle(p, msg); err != nil {
			h.log.WithError(err).WithField("site", p.site).Warn("protocol violation, dropping connection")
			return
		}
	}
}

// handle applies an inbound per-buffer operation to the hub's authoritative copy, then
// rebroadcasts it to every other peer (section 4.F "Broadcast rule"). focus has no buffer state
// to mutate and is simply relayed.
func (h *Hub) handle(p *peer, msg proto.Message) error {
	name, ok := bufferNameOf(msg)
	if !ok {
		return fmt.Errorf("unexpected message type %T from an authenticated peer", msg)
	}

	if _, ok := msg.(proto.Focus); ok {
		h.broadcastExcept(p.site, msg)
		return nil
	}

	h.mu.Lock()
	buf, found := h.buffers.get(name)
	h.mu.Unlock()
	if !found {
		return fmt.Errorf("%w: %q", ErrUnknownBuffer, name)
	}

	if err := applyOp(buf, nil, name, msg); err != nil {
		return err
	}
	h.broadcastExcept(p.site, msg)
	return nil
}

func (h *Hub) broadcastExcept(site uint16, msg proto.Message) {
	h.mu.Lock()
	peers := h.peerList()
	h.mu.Unlock()

	for _, other := range peers {
		if other.site == site {
			continue
		}
		other.send(msg)
	}
}
