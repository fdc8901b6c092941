package models

import (
	"crypto/rand"
	"fmt"
	"time"
)

const suffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewBatchID builds a batch identifier of the form
// HERB-<unix millis>-<6 random base36 chars>: unique enough to avoid
// collision for one identifier per submission.
func NewBatchID(now time.Time) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is unrecoverable on any supported platform.
		panic(err)
	}
	for i, b := range buf {
		buf[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return fmt.Sprintf("HERB-%d-%s", now.UnixMilli(), buf)
}
