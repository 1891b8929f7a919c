package session

// ServerConfig parameters correspond to the host boundary's startSession(port, sessionName,
// password?, displayName?) (section 6). DisplayName names the server operator's own contact
// entry (site 0); it is optional because a headless server may share buffers without a human
// sitting at it.
type ServerConfig struct {
	Port        int
	SessionName string
	Password    string
	DisplayName string
}

// ClientConfig parameters correspond to connect(host, port, displayName?) (section 6). Password
// is not in that signature, but a client dialing a password-protected session still has to
// produce an HMAC response to the server's challenge (section 4.F), so this repo's connect takes
// one anyway; see DESIGN.md for the open-question note.
type ClientConfig struct {
	Host        string
	Port        int
	Password    string
	DisplayName string
}
