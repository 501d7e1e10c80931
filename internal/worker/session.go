package worker

import "math/rand/v2"

const sessionAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// SessionLength is the length of a heartbeat session id.
const SessionLength = 32

// GenerateSession returns a random alphanumeric heartbeat session id.
func GenerateSession() string {
	b := make([]byte, SessionLength)
	for i := range b {
		b[i] = sessionAlphabet[rand.IntN(len(sessionAlphabet))]
	}
	return string(b)
}
