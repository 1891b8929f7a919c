package proto

import "io"

// Framer accumulates bytes read off a connection and drains complete framed messages from the
// front, in order. It implements section 4.F's framing rule directly: a form that doesn't yet
// close is left untouched in the buffer rather than partially consumed, so the next Feed can
// simply append and retry. Section 5 describes the surrounding model: one Framer per connection,
// fed from its read events, drained in FIFO order on the single logical thread.
type Framer struct {
	buf []byte
}

// Feed appends newly read bytes to the framer's receive buffer.
func (f *Framer) Feed(data []byte) {
	f.buf = append(f.buf, data...)
}

// Next attempts to decode one complete message from the front of the buffer. ok is false when
// the buffer holds no complete form yet; the buffer is untouched in that case. A malformed (but
// complete) form is a protocol violation and returned as an error; per section 7 the caller
// should drop the connection rather than attempt to resynchronize.
func (f *Framer) Next() (msg Message, ok bool, err error) {
	p := &parser{buf: f.buf}
	form, perr := parseForm(p)
	if perr == errIncomplete {
		return nil, false, nil
	}
	if perr != nil {
		return nil, false, perr
	}
	msg, err = Decode(form)
	if err != nil {
		return nil, false, err
	}
	f.buf = f.buf[p.pos:]
	return msg, true, nil
}

// Pending reports how many unconsumed bytes remain buffered.
func (f *Framer) Pending() int {
	return len(f.buf)
}

// WriteMessage frames and writes m to w.
func WriteMessage(w io.Writer, m Message) error {
	_, err := io.WriteString(w, Format(Encode(m)))
	return err
}
