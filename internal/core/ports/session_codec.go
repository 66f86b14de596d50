package ports

import "time"

// Identity is the verified subject carried by a session token.
type Identity struct {
	UserID   string
	Username string
	Roles    []string
}

// SessionCodec signs and verifies bearer session tokens. Verification is a
// pure function of the token, the shared secret, and the clock; it never
// consults the user store.
type SessionCodec interface {
	Issue(userID, username string, roles []string, issuedAt time.Time) (string, error)
	Verify(token string) (*Identity, error)
}
