package gravatar

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Hash returns the hex md5 of the normalized email, as gravatar expects.
func Hash(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	sum := md5.Sum([]byte(email))
	return hex.EncodeToString(sum[:])
}
