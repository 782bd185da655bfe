package translate

import (
	"crypto/md5"
	"encoding/hex"
)

// Hash returns the dictionary key of phrase: the lowercase hex MD5 digest of
// its exact bytes. Callers trim source phrases before hashing; captured
// phrases are hashed as found.
func Hash(phrase string) string {
	sum := md5.Sum([]byte(phrase))
	return hex.EncodeToString(sum[:])
}
