package domain

// Identity identifies the caller of an operation. The zero value is a guest.
type Identity struct {
	userID string
}

// Authenticated returns the identity of a signed-in user.
// An empty user id yields a guest.
func Authenticated(userID string) Identity {
	return Identity{userID: userID}
}

// Guest returns the identity of an unauthenticated caller.
func Guest() Identity {
	return Identity{}
}

func (i Identity) IsGuest() bool {
	return i.userID == ""
}

// UserID returns the user id and whether the identity is authenticated.
func (i Identity) UserID() (string, bool) {
	return i.userID, i.userID != ""
}

// RequireUser returns the user id of an authenticated identity and
// ErrGuestForbidden for guests. Every write path goes through it.
func RequireUser(i Identity) (string, error) {
	if i.IsGuest() {
		return "", ErrGuestForbidden
	}
	return i.userID, nil
}
