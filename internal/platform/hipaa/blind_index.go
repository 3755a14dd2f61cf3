package hipaa

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// BlindIndexer derives a deterministic lookup key for an encrypted field so
// it can be matched and kept unique without decrypting every row.
type BlindIndexer interface {
	BlindIndex(value string) string
}

// BlindIndex returns hex(HMAC-SHA256(key, value)). With encryption disabled
// the HMAC key is empty, which still yields a stable index.
func (c *FieldCipher) BlindIndex(value string) string {
	mac := hmac.New(sha256.New, c.indexKey)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}
