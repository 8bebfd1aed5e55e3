package badger

import (
	"fmt"
	"strings"

	"github.com/poiesic/dashboard/core"
)

// Key prefixes for different data types
const (
	userRecordPrefix    = "usrrec"
	userEmailPrefix     = "usreml"
	userNamePrefix      = "usrnam"
	userIDSeq           = "usrrecseq"
	sessionRecordPrefix = "sesrec"
)

// makeUserKey generates a key for a user by ID.
func makeUserKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", userRecordPrefix, id))
}

// userScanPrefix matches primary user records only, not the ID sequence.
func userScanPrefix() []byte {
	return []byte(userRecordPrefix + ":")
}

// makeUserEmailKey generates the email index key. Emails are compared
// case-insensitively.
// Format: prefix:email
func makeUserEmailKey(email string) []byte {
	return []byte(userEmailPrefix + ":" + strings.ToLower(strings.TrimSpace(email)))
}

// makeUserNameKey generates the username index key.
// Format: prefix:username
func makeUserNameKey(username string) []byte {
	return []byte(userNamePrefix + ":" + username)
}

// makeSessionKey generates a key for a session. The token itself is never
// stored in a key, only its content hash.
func makeSessionKey(token string) []byte {
	return []byte(fmt.Sprintf("%s:%d", sessionRecordPrefix, core.IDFromContent(token)))
}
