// Package ids generates the opaque identifiers used for every record.
// Identifiers are 21 characters over a URL-safe alphabet and carry no
// timestamp or sequence, so creation order is not observable from the
// outside.
package ids

import "crypto/rand"

const (
	alphabet = "useandom-26T198340PX75pxJACKVERYMINDBUSHWOLF_GQZbfghjklqvwyzrict"
	// Length of every generated identifier.
	Length = 21
)

func New() string {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process has no entropy source;
		// nothing sensible can run without one.
		panic(err)
	}
	for i, b := range buf {
		buf[i] = alphabet[b&63]
	}
	return string(buf)
}
