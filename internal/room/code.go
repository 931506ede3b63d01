// internal/room/code.go
package room

import "math/rand"

const (
	codeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// generateCode draws uniformly random codes until one is free. Retries are
// unbounded; at 36^6 codes starvation is not a practical concern. Assumes
// the registry lock is held.
func (reg *Registry) generateCode() string {
	for {
		buf := make([]byte, codeLength)
		for i := range buf {
			buf[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
		}
		code := string(buf)
		if _, exists := reg.rooms[code]; !exists {
			return code
		}
	}
}
