package proto

import "fmt"

func asString(a interface{}) (string, bool) {
	s, ok := a.(string)
	return s, ok
}

func asInt(a interface{}) (int64, bool) {
	n, ok := a.(int64)
	return n, ok
}

// Decode turns a parsed form (as returned by parseForm) into a typed Message. The form must be a
// non-empty List whose head is a Symbol naming a known type; anything else is a protocol
// violation (section 7).
func Decode(form interface{}) (Message, error) {
	list, ok := form.(List)
	if !ok || len(list) == 0 {
		return nil, fmt.Errorf("%w: not a non-empty list", ErrBadFrame)
	}
	head, ok := list[0].(Symbol)
	if !ok {
		return nil, fmt.Errorf("%w: missing type symbol", ErrBadFrame)
	}
	body := list[1:]

	switch head {
	case "hello":
		return decodeHello(body)
	case "challenge":
		return decodeChallenge(body)
	case "login":
		return decodeLogin(body)
	case "sync":
		return decodeSync(body)
	case "desync":
		return decodeDesync(body)
	case "insert":
		return decodeInsert(body)
	case "delete":
		return decodeDelete(body)
	case "cursor":
		return decodeCursor(body)
	case "contact":
		return decodeContact(body)
	case "focus":
		return decodeFocus(body)
	case "overlay-add":
		return decodeOverlayAdd(body)
	case "overlay-move":
		return decodeOverlayMove(body)
	case "overlay-put":
		return decodeOverlayPut(body)
	case "overlay-remove":
		return decodeOverlayRemove(body)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, head)
	}
}

func decodeHello(body List) (Message, error) {
	if len(body) < 1 || len(body) > 2 {
		return nil, fmt.Errorf("%w: hello wants 1 or 2 elements, got %d", ErrBadFrame, len(body))
	}
	name, ok := asString(body[0])
	if !ok {
		return nil, fmt.Errorf("%w: hello name", ErrBadFrame)
	}
	m := Hello{Name: name}
	if len(body) == 2 {
		s, ok := asString(body[1])
		if !ok {
			return nil, fmt.Errorf("%w: hello response", ErrBadFrame)
		}
		id, err := decodeID(s)
		if err != nil {
			return nil, err
		}
		m.Response = id
	}
	return m, nil
}

func decodeChallenge(body List) (Message, error) {
	if len(body) != 1 {
		return nil, fmt.Errorf("%w: challenge wants 1 element, got %d", ErrBadFrame, len(body))
	}
	s, ok := asString(body[0])
	if !ok {
		return nil, fmt.Errorf("%w: challenge salt", ErrBadFrame)
	}
	salt, err := decodeID(s)
	if err != nil {
		return nil, err
	}
	return Challenge{Salt: salt}, nil
}

func decodeLogin(body List) (Message, error) {
	if len(body) != 2 {
		return nil, fmt.Errorf("%w: login wants 2 elements, got %d", ErrBadFrame, len(body))
	}
	site, ok := asInt(body[0])
	if !ok {
		return nil, fmt.Errorf("%w: login siteID", ErrBadFrame)
	}
	name, ok := asString(body[1])
	if !ok {
		return nil, fmt.Errorf("%w: login sessionName", ErrBadFrame)
	}
	return Login{SiteID: uint16(site), SessionName: name}, nil
}

func decodeSync(body List) (Message, error) {
	if len(body) < 3 {
		return nil, fmt.Errorf("%w: sync wants at least 3 elements, got %d", ErrBadFrame, len(body))
	}
	buf, ok1 := asString(body[0])
	mode, ok2 := asString(body[1])
	content, ok3 := asString(body[2])
	if !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("%w: sync header", ErrBadFrame)
	}
	m := Sync{Buffer: buf, MajorMode: mode, Content: content}
	for _, elem := range body[3:] {
		runList, ok := elem.(List)
		if !ok || len(runList) != 3 {
			return nil, fmt.Errorf("%w: sync id-run entry", ErrBadFrame)
		}
		length, ok1 := asInt(runList[0])
		idStr, ok2 := asString(runList[1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: sync id-run entry", ErrBadFrame)
		}
		id, err := decodeID(idStr)
		if err != nil {
			return nil, err
		}
		m.Runs = append(m.Runs, IDRun{Length: int(length), ID: id, EOB: atomBool(runList[2])})
	}
	return m, nil
}

func decodeDesync(body List) (Message, error) {
	if len(body) != 1 {
		return nil, fmt.Errorf("%w: desync wants 1 element, got %d", ErrBadFrame, len(body))
	}
	buf, ok := asString(body[0])
	if !ok {
		return nil, fmt.Errorf("%w: desync buffer", ErrBadFrame)
	}
	return Desync{Buffer: buf}, nil
}

func decodeInsert(body List) (Message, error) {
	if len(body) != 4 {
		return nil, fmt.Errorf("%w: insert wants 4 elements, got %d", ErrBadFrame, len(body))
	}
	buf, ok1 := asString(body[0])
	idStr, ok2 := asString(body[1])
	hint, ok3 := asInt(body[2])
	content, ok4 := asString(body[3])
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, fmt.Errorf("%w: insert", ErrBadFrame)
	}
	id, err := decodeID(idStr)
	if err != nil {
		return nil, err
	}
	return Insert{Buffer: buf, ID: id, PosHint: int(hint), Content: content}, nil
}

func decodeDelete(body List) (Message, error) {
	if len(body) < 2 {
		return nil, fmt.Errorf("%w: delete wants at least 2 elements, got %d", ErrBadFrame, len(body))
	}
	buf, ok1 := asString(body[0])
	hint, ok2 := asInt(body[1])
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%w: delete header", ErrBadFrame)
	}
	m := Delete{Buffer: buf, PosHint: int(hint)}
	for _, elem := range body[2:] {
		pair, ok := elem.(List)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("%w: delete pair", ErrBadFrame)
		}
		length, ok1 := asInt(pair[0])
		idStr, ok2 := asString(pair[1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: delete pair", ErrBadFrame)
		}
		id, err := decodeID(idStr)
		if err != nil {
			return nil, err
		}
		m.Pairs = append(m.Pairs, DeletePair{Length: int(length), ID: id})
	}
	return m, nil
}

func decodeCursor(body List) (Message, error) {
	if len(body) != 6 {
		return nil, fmt.Errorf("%w: cursor wants 6 elements, got %d", ErrBadFrame, len(body))
	}
	buf, ok1 := asString(body[0])
	site, ok2 := asInt(body[1])
	pointHint, ok3 := asInt(body[2])
	pointIDStr, ok4 := asString(body[3])
	markHint, ok5 := asInt(body[4])
	markIDStr, ok6 := asString(body[5])
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
		return nil, fmt.Errorf("%w: cursor", ErrBadFrame)
	}
	pointID, err := decodeID(pointIDStr)
	if err != nil {
		return nil, err
	}
	markID, err := decodeID(markIDStr)
	if err != nil {
		return nil, err
	}
	return Cursor{
		Buffer: buf, SiteID: uint16(site),
		PointHint: int(pointHint), PointID: pointID,
		MarkHint: int(markHint), MarkID: markID,
	}, nil
}

func decodeContact(body List) (Message, error) {
	if len(body) != 2 && len(body) != 4 {
		return nil, fmt.Errorf("%w: contact wants 2 or 4 elements, got %d", ErrBadFrame, len(body))
	}
	site, ok1 := asInt(body[0])
	name, ok2 := asString(body[1])
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%w: contact header", ErrBadFrame)
	}
	m := Contact{SiteID: uint16(site), DisplayName: name}
	if len(body) == 4 {
		host, ok1 := asString(body[2])
		port, ok2 := asInt(body[3])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: contact host/port", ErrBadFrame)
		}
		m.Host, m.Port = host, int(port)
	}
	return m, nil
}

func decodeFocus(body List) (Message, error) {
	if len(body) != 2 {
		return nil, fmt.Errorf("%w: focus wants 2 elements, got %d", ErrBadFrame, len(body))
	}
	site, ok1 := asInt(body[0])
	buf, ok2 := asString(body[1])
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%w: focus", ErrBadFrame)
	}
	return Focus{SiteID: uint16(site), Buffer: buf}, nil
}

func decodeOverlayAdd(body List) (Message, error) {
	if len(body) != 12 {
		return nil, fmt.Errorf("%w: overlay-add wants 12 elements, got %d", ErrBadFrame, len(body))
	}
	buf, ok1 := asString(body[0])
	site, ok2 := asInt(body[1])
	clock, ok3 := asInt(body[2])
	species, ok4 := asString(body[3])
	startHint, ok5 := asInt(body[6])
	startIDStr, ok6 := asString(body[7])
	endHint, ok7 := asInt(body[8])
	endIDStr, ok8 := asString(body[9])
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 || !ok7 || !ok8 {
		return nil, fmt.Errorf("%w: overlay-add", ErrBadFrame)
	}
	startID, err := decodeID(startIDStr)
	if err != nil {
		return nil, err
	}
	endID, err := decodeID(endIDStr)
	if err != nil {
		return nil, err
	}
	return OverlayAdd{
		Buffer: buf, Site: uint16(site), Clock: uint32(clock), Species: species,
		FrontAdv: atomBool(body[4]), RearAdv: atomBool(body[5]),
		StartHint: int(startHint), StartID: startID,
		EndHint: int(endHint), EndID: endID,
		StartInside: atomBool(body[10]), EndInside: atomBool(body[11]),
	}, nil
}

func decodeOverlayMove(body List) (Message, error) {
	if len(body) != 7 {
		return nil, fmt.Errorf("%w: overlay-move wants 7 elements, got %d", ErrBadFrame, len(body))
	}
	buf, ok1 := asString(body[0])
	site, ok2 := asInt(body[1])
	clock, ok3 := asInt(body[2])
	startHint, ok4 := asInt(body[3])
	startIDStr, ok5 := asString(body[4])
	endHint, ok6 := asInt(body[5])
	endIDStr, ok7 := asString(body[6])
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 || !ok7 {
		return nil, fmt.Errorf("%w: overlay-move", ErrBadFrame)
	}
	startID, err := decodeID(startIDStr)
	if err != nil {
		return nil, err
	}
	endID, err := decodeID(endIDStr)
	if err != nil {
		return nil, err
	}
	return OverlayMove{
		Buffer: buf, Site: uint16(site), Clock: uint32(clock),
		StartHint: int(startHint), StartID: startID, EndHint: int(endHint), EndID: endID,
	}, nil
}

func decodeOverlayPut(body List) (Message, error) {
	if len(body) != 5 {
		return nil, fmt.Errorf("%w: overlay-put wants 5 elements, got %d", ErrBadFrame, len(body))
	}
	buf, ok1 := asString(body[0])
	site, ok2 := asInt(body[1])
	clock, ok3 := asInt(body[2])
	prop, ok4 := asString(body[3])
	value, ok5 := asString(body[4])
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return nil, fmt.Errorf("%w: overlay-put", ErrBadFrame)
	}
	return OverlayPut{Buffer: buf, Site: uint16(site), Clock: uint32(clock), Prop: prop, Value: value}, nil
}

func decodeOverlayRemove(body List) (Message, error) {
	if len(body) != 3 {
		return nil, fmt.Errorf("%w: overlay-remove wants 3 elements, got %d", ErrBadFrame, len(body))
	}
	buf, ok1 := asString(body[0])
	site, ok2 := asInt(body[1])
	clock, ok3 := asInt(body[2])
	if !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("%w: overlay-remove", ErrBadFrame)
	}
	return OverlayRemove{Buffer: buf, Site: uint16(site), Clock: uint32(clock)}, nil
}
