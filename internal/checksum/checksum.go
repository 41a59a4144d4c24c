// Package checksum fingerprints dataset contents so unchanged files are not reloaded.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Reader passes reads through to the wrapped reader while hashing them.
type Reader struct {
	r io.Reader
	h hash.Hash
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	h := sha256.New()
	return &Reader{r: io.TeeReader(r, h), h: h}
}

func (c *Reader) Read(p []byte) (int, error) { return c.r.Read(p) }

// Sum returns the digest of everything read so far, in the same form as Sum.
func (c *Reader) Sum() string {
	return hex.EncodeToString(c.h.Sum(nil))
}
