package application

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// tokenKey scopes session tokens to this application. Tokens are capability
// references for restoring a session, not secrets.
var tokenKey = [32]byte{
	'r', 'o', 'o', 'm', '-', 'b', 'o', 'o', 'k', 'i', 'n', 'g', '/',
	's', 'e', 's', 's', 'i', 'o', 'n', '-', 't', 'o', 'k', 'e', 'n', '/', 'v', '1',
}

// DeriveToken returns the session token for email. The same email always
// yields the same token.
func DeriveToken(email string) string {
	hasher, err := blake3.NewKeyed(tokenKey[:])
	if err != nil {
		// NewKeyed only fails on a key that is not 32 bytes.
		panic(err)
	}
	_, _ = hasher.Write([]byte(email))
	return hex.EncodeToString(hasher.Sum(nil))
}
