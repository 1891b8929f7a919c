package proto

import (
	"testing"
)

func TestFramerDrainsOneMessageAtATime(t *testing.T) {
	var f Framer
	f.Feed([]byte(Format(Encode(Hello{Name: "ada"}))))
	f.Feed([]byte(Format(Encode(Login{SiteID: 3, SessionName: "scratch"}))))

	m1, ok, err := f.Next()
	if err != nil || !ok {
		t.Fatalf("Next (1st): ok=%v err=%v", ok, err)
	}
	hello, ok := m1.(Hello)
	if !ok || hello.Name != "ada" {
		t.Fatalf("1st message: got %#v", m1)
	}

	m2, ok, err := f.Next()
	if err != nil || !ok {
		t.Fatalf("Next (2nd): ok=%v err=%v", ok, err)
	}
	login, ok := m2.(Login)
	if !ok || login.SiteID != 3 || login.SessionName != "scratch" {
		t.Fatalf("2nd message: got %#v", m2)
	}

	if _, ok, err := f.Next(); ok || err != nil {
		t.Fatalf("expected no more messages, got ok=%v err=%v", ok, err)
	}
}

// TestFramerWaitsOnTruncatedForm checks section 4.F: feeding a message byte by byte never yields
// a result (nor an error) until the closing byte arrives, and the full message is still decoded
// correctly once it does.
func TestFramerWaitsOnTruncatedForm(t *testing.T) {
	var f Framer
	full := []byte(Format(Encode(Insert{Buffer: "scratch", ID: []byte{1, 2, 3}, PosHint: 4, Content: "x"})))

	// The form closes at ')', the byte just before Format's trailing newline.
	closing := len(full) - 2
	for i := 0; i < closing; i++ {
		f.Feed(full[i : i+1])
		if _, ok, err := f.Next(); ok || err != nil {
			t.Fatalf("byte %d: expected incomplete, got ok=%v err=%v", i, ok, err)
		}
	}
	f.Feed(full[closing:])

	msg, ok, err := f.Next()
	if err != nil || !ok {
		t.Fatalf("closing byte: ok=%v err=%v", ok, err)
	}
	ins, ok := msg.(Insert)
	if !ok || ins.Buffer != "scratch" || ins.PosHint != 4 || ins.Content != "x" {
		t.Fatalf("decoded message: got %#v", msg)
	}
}

func TestFramerRejectsUnknownType(t *testing.T) {
	var f Framer
	f.Feed([]byte("(not-a-real-type 1 2 3)\n"))
	if _, ok, err := f.Next(); ok || err == nil {
		t.Fatalf("expected an error for an unknown type, got ok=%v err=%v", ok, err)
	}
}

func TestFramerRejectsWrongArity(t *testing.T) {
	var f Framer
	f.Feed([]byte(`(login 1)` + "\n"))
	if _, ok, err := f.Next(); ok || err == nil {
		t.Fatalf("expected an arity error, got ok=%v err=%v", ok, err)
	}
}

func TestReadDottedList(t *testing.T) {
	var f Framer
	f.Feed([]byte("(a . (b c))\n"))
	p := &parser{buf: f.buf}
	form, err := parseForm(p)
	if err != nil {
		t.Fatalf("parseForm: %v", err)
	}
	list, ok := form.(List)
	if !ok || len(list) != 3 {
		t.Fatalf("expected a flattened 3-element list, got %#v", form)
	}
}
