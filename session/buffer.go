package session

import "github.com/burntcarrot/loomtext/crdt"

// bufferSet is a replica's table of shared buffers, keyed by name. Section 3 "Ownership": "A
// replica owns its document, ID annotations, cursor table, and overlay table" — bufferSet is
// where that ownership lives once a replica juggles more than one shared document.
type bufferSet struct {
	buffers map[string]*crdt.Buffer
}

func newBufferSet() *bufferSet {
	return &bufferSet{buffers: make(map[string]*crdt.Buffer)}
}

func (s *bufferSet) get(name string) (*crdt.Buffer, bool) {
	b, ok := s.buffers[name]
	return b, ok
}

// ensure returns the named buffer, creating an empty one owned by site if it doesn't exist yet.
func (s *bufferSet) ensure(name, majorMode string, site uint16) *crdt.Buffer {
	if b, ok := s.buffers[name]; ok {
		return b
	}
	b := crdt.NewBuffer(name, majorMode, site)
	s.buffers[name] = b
	return b
}

func (s *bufferSet) drop(name string) {
	delete(s.buffers, name)
}

func (s *bufferSet) names() []string {
	out := make([]string, 0, len(s.buffers))
	for n := range s.buffers {
		out = append(out, n)
	}
	return out
}
