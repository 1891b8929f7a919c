package proto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
)

// ChallengeSize is the length in bytes of a freshly generated authentication challenge
// (section 4.F: "a 32-byte random challenge").
const ChallengeSize = 32

// NewChallenge returns a fresh random challenge for a password-protected session.
func NewChallenge() ([]byte, error) {
	c := make([]byte, ChallengeSize)
	if _, err := rand.Read(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Respond computes HMAC-SHA1(password, challenge), the value a client echoes back in its hello
// response and a server computes as `expected` (section 4.F).
func Respond(password string, challenge []byte) []byte {
	mac := hmac.New(sha1.New, []byte(password))
	mac.Write(challenge)
	return mac.Sum(nil)
}

// Verify reports whether response is the correct HMAC-SHA1 response to challenge under password.
func Verify(password string, challenge, response []byte) bool {
	return hmac.Equal(Respond(password, challenge), response)
}
