package proto

import (
	"encoding/base64"
	"fmt"
)

// Message is any of the wire message types in section 6's table. Every implementation can
// render itself to a List (the BODY half of `(TYPE . BODY)`) and names its own TYPE symbol.
type Message interface {
	messageType() Symbol
	body() List
}

// Hello is `(hello name [response])`, client to server: the initial greeting, optionally
// carrying the HMAC-SHA1 challenge response when the session is password-protected.
type Hello struct {
	Name     string
	Response []byte // nil when no challenge was issued
}

func (Hello) messageType() Symbol { return "hello" }
func (m Hello) body() List {
	b := List{m.Name}
	if m.Response != nil {
		b = append(b, encodeID(m.Response))
	}
	return b
}

// Challenge is `(challenge salt)`, server to client: a 32-byte random challenge.
type Challenge struct {
	Salt []byte
}

func (Challenge) messageType() Symbol { return "challenge" }
func (m Challenge) body() List        { return List{encodeID(m.Salt)} }

// Login is `(login siteID sessionName)`, server to the newly accepted client.
type Login struct {
	SiteID      uint16
	SessionName string
}

func (Login) messageType() Symbol { return "login" }
func (m Login) body() List        { return List{int64(m.SiteID), m.SessionName} }

// IDRun is one entry of a sync message's id-run-list: `(length base64ID eob?)`.
type IDRun struct {
	Length int
	ID     []byte
	EOB    bool
}

// Sync is `(sync buffer majorMode content . idRunList)`, server to client: a full-document
// snapshot (section 4.G).
type Sync struct {
	Buffer    string
	MajorMode string
	Content   string
	Runs      []IDRun
}

func (Sync) messageType() Symbol { return "sync" }
func (m Sync) body() List {
	b := List{m.Buffer, m.MajorMode, m.Content}
	for _, run := range m.Runs {
		b = append(b, List{int64(run.Length), encodeID(run.ID), boolAtom(run.EOB)})
	}
	return b
}

// Desync is `(desync buffer)`, server to clients: the buffer is no longer shared.
type Desync struct {
	Buffer string
}

func (Desync) messageType() Symbol { return "desync" }
func (m Desync) body() List        { return List{m.Buffer} }

// Insert is `(insert buffer base64ID posHint content)`.
type Insert struct {
	Buffer  string
	ID      []byte
	PosHint int
	Content string
}

func (Insert) messageType() Symbol { return "insert" }
func (m Insert) body() List        { return List{m.Buffer, encodeID(m.ID), int64(m.PosHint), m.Content} }

// DeletePair is one `(len . base64ID)` entry of a delete message.
type DeletePair struct {
	Length int
	ID     []byte
}

// Delete is `(delete buffer posHint (len . base64ID)…)`.
type Delete struct {
	Buffer  string
	PosHint int
	Pairs   []DeletePair
}

func (Delete) messageType() Symbol { return "delete" }
func (m Delete) body() List {
	b := List{m.Buffer, int64(m.PosHint)}
	for _, p := range m.Pairs {
		b = append(b, List{int64(p.Length), encodeID(p.ID)})
	}
	return b
}

// Cursor is `(cursor buffer siteID pointHint pointID markHint markID)`. An absent mark is sent
// as an empty id with hint -1 (section 4.E's "no mark" state).
type Cursor struct {
	Buffer    string
	SiteID    uint16
	PointHint int
	PointID   []byte
	MarkHint  int
	MarkID    []byte
}

func (Cursor) messageType() Symbol { return "cursor" }
func (m Cursor) body() List {
	return List{m.Buffer, int64(m.SiteID), int64(m.PointHint), encodeID(m.PointID), int64(m.MarkHint), encodeID(m.MarkID)}
}

// Contact is `(contact siteID displayName [host port])`.
type Contact struct {
	SiteID      uint16
	DisplayName string
	Host        string
	Port        int
}

func (Contact) messageType() Symbol { return "contact" }
func (m Contact) body() List {
	b := List{int64(m.SiteID), m.DisplayName}
	if m.Host != "" {
		b = append(b, m.Host, int64(m.Port))
	}
	return b
}

// Focus is `(focus siteID buffer)`.
type Focus struct {
	SiteID uint16
	Buffer string
}

func (Focus) messageType() Symbol { return "focus" }
func (m Focus) body() List        { return List{int64(m.SiteID), m.Buffer} }

// OverlayAdd is `(overlay-add buffer site clock species frontAdv rearAdv startHint startID
// endHint endID startInside endInside)`. StartInside/EndInside are this repo's own extension
// to the wire format of section 6 (see DESIGN.md's open-question note on overlay endpoint
// anchoring at a document boundary): they cannot be recovered from frontAdv/rearAdv alone.
type OverlayAdd struct {
	Buffer                  string
	Site                    uint16
	Clock                   uint32
	Species                 string
	FrontAdv, RearAdv       bool
	StartHint               int
	StartID                 []byte
	EndHint                 int
	EndID                   []byte
	StartInside, EndInside  bool
}

func (OverlayAdd) messageType() Symbol { return "overlay-add" }
func (m OverlayAdd) body() List {
	return List{
		m.Buffer, int64(m.Site), int64(m.Clock), m.Species,
		boolAtom(m.FrontAdv), boolAtom(m.RearAdv),
		int64(m.StartHint), encodeID(m.StartID), int64(m.EndHint), encodeID(m.EndID),
		boolAtom(m.StartInside), boolAtom(m.EndInside),
	}
}

// OverlayMove is `(overlay-move buffer site clock startHint startID endHint endID)`.
type OverlayMove struct {
	Buffer    string
	Site      uint16
	Clock     uint32
	StartHint int
	StartID   []byte
	EndHint   int
	EndID     []byte
}

func (OverlayMove) messageType() Symbol { return "overlay-move" }
func (m OverlayMove) body() List {
	return List{m.Buffer, int64(m.Site), int64(m.Clock), int64(m.StartHint), encodeID(m.StartID), int64(m.EndHint), encodeID(m.EndID)}
}

// OverlayPut is `(overlay-put buffer site clock prop value)`.
type OverlayPut struct {
	Buffer     string
	Site       uint16
	Clock      uint32
	Prop, Value string
}

func (OverlayPut) messageType() Symbol { return "overlay-put" }
func (m OverlayPut) body() List {
	return List{m.Buffer, int64(m.Site), int64(m.Clock), m.Prop, m.Value}
}

// OverlayRemove is `(overlay-remove buffer site clock)`.
type OverlayRemove struct {
	Buffer string
	Site   uint16
	Clock  uint32
}

func (OverlayRemove) messageType() Symbol { return "overlay-remove" }
func (m OverlayRemove) body() List        { return List{m.Buffer, int64(m.Site), int64(m.Clock)} }

func encodeID(id []byte) string {
	return base64.StdEncoding.EncodeToString(id)
}

func decodeID(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64 id: %v", ErrBadFrame, err)
	}
	return b, nil
}

// Encode renders m as a complete `(TYPE . BODY)` form ready for Format/Write.
func Encode(m Message) List {
	return append(List{m.messageType()}, m.body()...)
}
